package services

import (
	"context"
	"net/http"

	errorsmod "cosmossdk.io/errors"
	"github.com/rs/zerolog/log"

	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

// toApiError maps a ledger error onto the HTTP status and error code the API
// returns. The ledger error stays reachable through Err.
func toApiError(ctx context.Context, operation string, err error) *types.Error {
	logger := log.Ctx(ctx).With().Str("operation", operation).Logger()
	switch {
	case errorsmod.IsOf(err, ledger.ErrPaused, ledger.ErrUnauthorized):
		logger.Warn().Err(err).Msg("ledger call rejected")
		return types.NewError(http.StatusForbidden, types.Forbidden, err)
	case errorsmod.IsOf(err, ledger.ErrMultipleCoins, ledger.ErrNoFunds, ledger.ErrInvalidAmount,
		ledger.ErrInvalidParams, ledger.ErrInsufficientTokenBalance, ledger.ErrPendingMismatch):
		logger.Warn().Err(err).Msg("ledger call rejected")
		return types.NewError(http.StatusBadRequest, types.ValidationError, err)
	case errorsmod.IsOf(err, ledger.ErrNotYetWithdrawable, ledger.ErrNoWithdrawableAssets):
		logger.Info().Err(err).Msg("nothing to withdraw")
		return types.NewError(http.StatusForbidden, types.Forbidden, err)
	case errorsmod.IsOf(err, ledger.ErrContractNotRegistered, ledger.ErrEmptyRegistry):
		logger.Warn().Err(err).Msg("hub is not fully configured")
		return types.NewError(http.StatusBadRequest, types.BadRequest, err)
	case errorsmod.IsOf(err, ledger.ErrStateNotFound):
		logger.Error().Err(err).Msg("hub ledger is not instantiated")
		return types.NewError(http.StatusNotFound, types.NotFound, err)
	case errorsmod.IsOf(err, ledger.ErrCollaborator):
		logger.Error().Err(err).Msg("chain query failed")
		return types.NewError(http.StatusServiceUnavailable, types.ServiceUnavailable, err)
	default:
		logger.Error().Err(err).Msg("ledger call failed")
		return types.NewInternalServiceError(err)
	}
}

// IsRejection reports whether err is a policy or solvency rejection of the
// ledger, as opposed to a transient or internal failure.
func IsRejection(err *types.Error) bool {
	if err == nil {
		return false
	}
	return ledger.IsPolicyError(err.Err) || ledger.IsSolvencyError(err.Err) ||
		errorsmod.IsOf(err.Err, ledger.ErrEmptyRegistry)
}
