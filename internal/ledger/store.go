package ledger

import (
	"context"

	sdkmath "cosmossdk.io/math"
)

// Store is the hub's exclusive persistent state. Implementations bind a
// Store to one transaction so that every write of a call commits or aborts
// together. Missing singletons return ErrStateNotFound.
type Store interface {
	GetConfig(ctx context.Context) (*HubConfig, error)
	SetConfig(ctx context.Context, cfg *HubConfig) error
	GetParameters(ctx context.Context) (*Parameters, error)
	SetParameters(ctx context.Context, params *Parameters) error
	GetState(ctx context.Context) (*State, error)
	SetState(ctx context.Context, state *State) error
	GetCurrentBatch(ctx context.Context) (*CurrentBatch, error)
	SetCurrentBatch(ctx context.Context, batch *CurrentBatch) error

	// GetUnbondHistory returns ErrStateNotFound for an unknown batch id.
	GetUnbondHistory(ctx context.Context, batchID uint64) (*UnbondHistory, error)
	SetUnbondHistory(ctx context.Context, history *UnbondHistory) error
	// UnbondHistoryRange returns records with BatchID > startAfter in
	// ascending order. A non-positive limit returns all of them.
	UnbondHistoryRange(ctx context.Context, startAfter uint64, limit int) ([]UnbondHistory, error)
	// UnreleasedUnbondHistory returns unreleased records in ascending order.
	UnreleasedUnbondHistory(ctx context.Context) ([]UnbondHistory, error)

	// GetUnbondWaitEntry returns zero when the entry does not exist.
	GetUnbondWaitEntry(ctx context.Context, batchID uint64, address string) (sdkmath.Int, error)
	SetUnbondWaitEntry(ctx context.Context, batchID uint64, address string, amount sdkmath.Int) error
	RemoveUnbondWaitEntry(ctx context.Context, batchID uint64, address string) error
	// UnbondWaitEntries returns the address's entries ordered by batch id.
	UnbondWaitEntries(ctx context.Context, address string) ([]UnbondRequest, error)

	// GetPendingBurn returns the unconfirmed burns of address, zero when none.
	GetPendingBurn(ctx context.Context, address string) (sdkmath.Int, error)
	// SetPendingBurn removes the record when amount is zero.
	SetPendingBurn(ctx context.Context, address string, amount sdkmath.Int) error

	IsGuardian(ctx context.Context, address string) (bool, error)
	AddGuardian(ctx context.Context, address string) error
	RemoveGuardian(ctx context.Context, address string) error
	// Guardians returns guardian addresses in ascending order.
	Guardians(ctx context.Context) ([]string, error)
}
