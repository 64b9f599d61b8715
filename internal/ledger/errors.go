package ledger

import (
	errorsmod "cosmossdk.io/errors"
)

const Codespace = "hub"

// hub sentinel errors
var (
	ErrPaused                   = errorsmod.Register(Codespace, 1100, "the hub is temporarily paused")
	ErrUnauthorized             = errorsmod.Register(Codespace, 1101, "unauthorized")
	ErrMultipleCoins            = errorsmod.Register(Codespace, 1102, "more than one coin is sent; only one asset is supported")
	ErrNoFunds                  = errorsmod.Register(Codespace, 1103, "no assets are provided to bond")
	ErrContractNotRegistered    = errorsmod.Register(Codespace, 1104, "contract must have been registered")
	ErrEmptyRegistry            = errorsmod.Register(Codespace, 1105, "validators registry is empty")
	ErrInvalidAmount            = errorsmod.Register(Codespace, 1106, "amount must be positive")
	ErrInsufficientTokenBalance = errorsmod.Register(Codespace, 1107, "insufficient token balance to burn")
	ErrNotYetWithdrawable       = errorsmod.Register(Codespace, 1108, "no unbonded batch is withdrawable yet")
	ErrNoWithdrawableAssets     = errorsmod.Register(Codespace, 1109, "no withdrawable assets are available yet")
	ErrOverflow                 = errorsmod.Register(Codespace, 1110, "arithmetic overflow")
	ErrCollaborator             = errorsmod.Register(Codespace, 1111, "collaborator query failed")
	ErrStateNotFound            = errorsmod.Register(Codespace, 1112, "hub state not found")
	ErrInvalidParams            = errorsmod.Register(Codespace, 1113, "invalid hub parameters")
	ErrPendingMismatch          = errorsmod.Register(Codespace, 1114, "confirmed instructions exceed the pending ones")
)

// IsPolicyError reports whether err rejects the caller rather than the state
// of the ledger. Such calls can be retried once the caller fixes the request.
func IsPolicyError(err error) bool {
	return errorsmod.IsOf(err,
		ErrPaused, ErrUnauthorized, ErrMultipleCoins, ErrNoFunds,
		ErrContractNotRegistered, ErrInvalidAmount, ErrInvalidParams, ErrPendingMismatch,
	)
}

// IsSolvencyError reports whether err is a solvency guard rejection.
func IsSolvencyError(err error) bool {
	return errorsmod.IsOf(err,
		ErrInsufficientTokenBalance, ErrNotYetWithdrawable, ErrNoWithdrawableAssets,
	)
}
