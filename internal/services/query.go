package services

import (
	"context"

	"github.com/babylonchain/staking-hub-service/internal/db"
	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

type StatePublic struct {
	ExchangeRate       string        `json:"exchange_rate"`
	TotalBonded        string        `json:"total_bonded"`
	TotalIssued        string        `json:"total_issued"`
	PrevNativeBalance  string        `json:"prev_native_balance"`
	LastUnbondedTime   uint64        `json:"last_unbonded_time"`
	LastProcessedBatch uint64        `json:"last_processed_batch"`
	Pending            PendingPublic `json:"pending"`
}

// PendingPublic holds the effects of emitted instructions the executor has
// not confirmed yet.
type PendingPublic struct {
	Delegated   string `json:"delegated"`
	Undelegated string `json:"undelegated"`
	Minted      string `json:"minted"`
	Burned      string `json:"burned"`
	Sent        string `json:"sent"`
}

type CurrentBatchPublic struct {
	ID              uint64 `json:"id"`
	RequestedAmount string `json:"requested_amount"`
}

type UnbondHistoryPublic struct {
	BatchID             uint64 `json:"batch_id"`
	Time                uint64 `json:"time"`
	Amount              string `json:"amount"`
	AppliedExchangeRate string `json:"applied_exchange_rate"`
	WithdrawRate        string `json:"withdraw_rate"`
	Released            bool   `json:"released"`
}

type UnbondRequestPublic struct {
	BatchID uint64 `json:"batch_id"`
	Amount  string `json:"amount"`
}

type UnbondRequestsPublic struct {
	Address  string                `json:"address"`
	Requests []UnbondRequestPublic `json:"requests"`
}

type WithdrawablePublic struct {
	Address      string `json:"address"`
	Withdrawable string `json:"withdrawable"`
}

// query runs fn in a read-only transaction.
func (s *Services) query(ctx context.Context, name string, fn func(ctx context.Context, hub *ledger.Hub) error) *types.Error {
	err := s.DbClient.RunInTx(ctx, func(ctx context.Context, store db.HubStore) error {
		return fn(ctx, ledger.NewHub(store, s.chain))
	})
	if err != nil {
		return toApiError(ctx, name, err)
	}
	return nil
}

// GetState returns the reconciled ledger state without persisting it.
func (s *Services) GetState(ctx context.Context) (*StatePublic, *types.Error) {
	var state *ledger.State
	if err := s.query(ctx, "state", func(ctx context.Context, hub *ledger.Hub) error {
		var err error
		state, err = hub.QueryState(ctx, s.env())
		return err
	}); err != nil {
		return nil, err
	}
	return &StatePublic{
		ExchangeRate:       state.ExchangeRate.String(),
		TotalBonded:        state.TotalBonded.String(),
		TotalIssued:        state.TotalIssued.String(),
		PrevNativeBalance:  state.PrevNativeBalance.String(),
		LastUnbondedTime:   state.LastUnbondedTime,
		LastProcessedBatch: state.LastProcessedBatch,
		Pending: PendingPublic{
			Delegated:   state.Pending.Delegated.String(),
			Undelegated: state.Pending.Undelegated.String(),
			Minted:      state.Pending.Minted.String(),
			Burned:      state.Pending.Burned.String(),
			Sent:        state.Pending.Sent.String(),
		},
	}, nil
}

func (s *Services) GetCurrentBatch(ctx context.Context) (*CurrentBatchPublic, *types.Error) {
	var batch *ledger.CurrentBatch
	if err := s.query(ctx, "current_batch", func(ctx context.Context, hub *ledger.Hub) error {
		var err error
		batch, err = hub.QueryCurrentBatch(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return &CurrentBatchPublic{ID: batch.ID, RequestedAmount: batch.RequestedAmount.String()}, nil
}

func (s *Services) GetParameters(ctx context.Context) (*ledger.Parameters, *types.Error) {
	var params *ledger.Parameters
	if err := s.query(ctx, "parameters", func(ctx context.Context, hub *ledger.Hub) error {
		var err error
		params, err = hub.QueryParameters(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return params, nil
}

func (s *Services) GetConfig(ctx context.Context) (*ledger.HubConfig, *types.Error) {
	var cfg *ledger.HubConfig
	if err := s.query(ctx, "config", func(ctx context.Context, hub *ledger.Hub) error {
		var err error
		cfg, err = hub.QueryConfig(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Services) GetGuardians(ctx context.Context) ([]string, *types.Error) {
	var guardians []string
	if err := s.query(ctx, "guardians", func(ctx context.Context, hub *ledger.Hub) error {
		var err error
		guardians, err = hub.QueryGuardians(ctx)
		return err
	}); err != nil {
		return nil, err
	}
	if guardians == nil {
		guardians = []string{}
	}
	return guardians, nil
}

func (s *Services) GetUnbondRequests(ctx context.Context, address string) (*UnbondRequestsPublic, *types.Error) {
	var requests []ledger.UnbondRequest
	if err := s.query(ctx, "unbond_requests", func(ctx context.Context, hub *ledger.Hub) error {
		var err error
		requests, err = hub.QueryUnbondRequests(ctx, address)
		return err
	}); err != nil {
		return nil, err
	}
	public := make([]UnbondRequestPublic, 0, len(requests))
	for _, r := range requests {
		public = append(public, UnbondRequestPublic{BatchID: r.BatchID, Amount: r.Amount.String()})
	}
	return &UnbondRequestsPublic{Address: address, Requests: public}, nil
}

// GetAllHistory pages through closed batches. The returned next key is the
// last batch id of the page, or zero when the page is not full.
func (s *Services) GetAllHistory(ctx context.Context, startFrom uint64, limit int) ([]UnbondHistoryPublic, uint64, *types.Error) {
	var history []ledger.UnbondHistory
	if err := s.query(ctx, "history", func(ctx context.Context, hub *ledger.Hub) error {
		var err error
		history, err = hub.QueryAllHistory(ctx, startFrom, limit)
		return err
	}); err != nil {
		return nil, 0, err
	}

	public := make([]UnbondHistoryPublic, 0, len(history))
	for _, h := range history {
		public = append(public, UnbondHistoryPublic{
			BatchID:             h.BatchID,
			Time:                h.Time,
			Amount:              h.Amount.String(),
			AppliedExchangeRate: h.AppliedExchangeRate.String(),
			WithdrawRate:        h.WithdrawRate.String(),
			Released:            h.Released,
		})
	}

	effectiveLimit := limit
	if effectiveLimit <= 0 {
		effectiveLimit = ledger.DefaultHistoryLimit
	}
	if effectiveLimit > ledger.MaxHistoryLimit {
		effectiveLimit = ledger.MaxHistoryLimit
	}
	var nextKey uint64
	if len(public) == effectiveLimit {
		nextKey = public[len(public)-1].BatchID
	}
	return public, nextKey, nil
}

func (s *Services) GetWithdrawable(ctx context.Context, address string) (*WithdrawablePublic, *types.Error) {
	result := &WithdrawablePublic{Address: address}
	if err := s.query(ctx, "withdrawable", func(ctx context.Context, hub *ledger.Hub) error {
		amount, err := hub.QueryWithdrawableUnbonded(ctx, s.env(), address)
		if err != nil {
			return err
		}
		result.Withdrawable = amount.String()
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}
