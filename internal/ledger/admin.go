package ledger

import (
	"context"
	"strconv"

	errorsmod "cosmossdk.io/errors"
)

func (h *Hub) ownerConfig(ctx context.Context, sender string) (*HubConfig, error) {
	cfg, err := h.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if sender != cfg.Owner {
		return nil, errorsmod.Wrapf(ErrUnauthorized, "%s is not the owner", sender)
	}
	return cfg, nil
}

// Pause may be called by the owner or any guardian.
func (h *Hub) Pause(ctx context.Context, info MessageInfo) (*Response, error) {
	cfg, err := h.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if info.Sender != cfg.Owner {
		isGuardian, err := h.store.IsGuardian(ctx, info.Sender)
		if err != nil {
			return nil, err
		}
		if !isGuardian {
			return nil, errorsmod.Wrapf(ErrUnauthorized, "%s may not pause the hub", info.Sender)
		}
	}
	if err := h.setPaused(ctx, true); err != nil {
		return nil, err
	}
	return NewResponse("pause_contracts"), nil
}

// Unpause is restricted to the owner.
func (h *Hub) Unpause(ctx context.Context, info MessageInfo) (*Response, error) {
	if _, err := h.ownerConfig(ctx, info.Sender); err != nil {
		return nil, err
	}
	if err := h.setPaused(ctx, false); err != nil {
		return nil, err
	}
	return NewResponse("unpause_contracts"), nil
}

func (h *Hub) setPaused(ctx context.Context, paused bool) error {
	params, err := h.store.GetParameters(ctx)
	if err != nil {
		return err
	}
	params.Paused = paused
	return h.store.SetParameters(ctx, params)
}

func (h *Hub) AddGuardians(ctx context.Context, info MessageInfo, addresses []string) (*Response, error) {
	if _, err := h.ownerConfig(ctx, info.Sender); err != nil {
		return nil, err
	}
	res := NewResponse("add_guardians")
	for _, addr := range addresses {
		if err := h.store.AddGuardian(ctx, addr); err != nil {
			return nil, err
		}
		res.AddAttribute("address", addr)
	}
	return res, nil
}

func (h *Hub) RemoveGuardians(ctx context.Context, info MessageInfo, addresses []string) (*Response, error) {
	if _, err := h.ownerConfig(ctx, info.Sender); err != nil {
		return nil, err
	}
	res := NewResponse("remove_guardians")
	for _, addr := range addresses {
		if err := h.store.RemoveGuardian(ctx, addr); err != nil {
			return nil, err
		}
		res.AddAttribute("address", addr)
	}
	return res, nil
}

// UpdateParams changes the epoch and unbonding periods. Nil leaves a value as is.
func (h *Hub) UpdateParams(ctx context.Context, info MessageInfo, epochPeriod, unbondingPeriod *uint64) (*Response, error) {
	if _, err := h.ownerConfig(ctx, info.Sender); err != nil {
		return nil, err
	}
	params, err := h.store.GetParameters(ctx)
	if err != nil {
		return nil, err
	}
	if epochPeriod != nil {
		params.EpochPeriod = *epochPeriod
	}
	if unbondingPeriod != nil {
		params.UnbondingPeriod = *unbondingPeriod
	}
	if err := h.store.SetParameters(ctx, params); err != nil {
		return nil, err
	}
	return NewResponse("update_params").
		AddAttribute("epoch_period", strconv.FormatUint(params.EpochPeriod, 10)).
		AddAttribute("unbonding_period", strconv.FormatUint(params.UnbondingPeriod, 10)), nil
}

// ConfigUpdate carries the config fields to change. Nil leaves a field as is.
type ConfigUpdate struct {
	Owner              *string `json:"owner,omitempty"`
	RewardsDispatcher  *string `json:"rewards_dispatcher,omitempty"`
	ValidatorsRegistry *string `json:"validators_registry,omitempty"`
	TokenContract      *string `json:"token_contract,omitempty"`
}

func (h *Hub) UpdateConfig(ctx context.Context, info MessageInfo, update ConfigUpdate) (*Response, error) {
	cfg, err := h.ownerConfig(ctx, info.Sender)
	if err != nil {
		return nil, err
	}
	if update.Owner != nil {
		if *update.Owner == "" {
			return nil, errorsmod.Wrap(ErrInvalidParams, "owner must not be empty")
		}
		cfg.Owner = *update.Owner
	}
	if update.RewardsDispatcher != nil {
		cfg.RewardsDispatcher = *update.RewardsDispatcher
	}
	if update.ValidatorsRegistry != nil {
		cfg.ValidatorsRegistry = *update.ValidatorsRegistry
	}
	if update.TokenContract != nil {
		cfg.TokenContract = *update.TokenContract
	}
	if err := h.store.SetConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return NewResponse("update_config"), nil
}

// RedelegateProxy forwards redelegations requested by the validators registry
// or the owner.
func (h *Hub) RedelegateProxy(ctx context.Context, info MessageInfo, srcValidator string, redelegations []Redelegation) (*Response, error) {
	cfg, err := h.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.ValidatorsRegistry == "" {
		return nil, errorsmod.Wrap(ErrContractNotRegistered, "validators registry")
	}
	if info.Sender != cfg.ValidatorsRegistry && info.Sender != cfg.Owner {
		return nil, errorsmod.Wrapf(ErrUnauthorized, "%s may not redelegate", info.Sender)
	}

	res := NewResponse("redelegate_proxy")
	for _, r := range redelegations {
		amount := r.Amount
		if amount.Amount.IsNil() || !amount.Amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		res.AddInstruction(Instruction{
			Type:         InstructionRedelegate,
			Validator:    srcValidator,
			DstValidator: r.Validator,
			Amount:       &amount,
		})
	}
	return res, nil
}

// DispatchRewards withdraws the rewards of every delegation and asks the
// rewards dispatcher to redistribute them. Permissionless.
func (h *Hub) DispatchRewards(ctx context.Context, env Env) (*Response, error) {
	if _, err := h.loadUnpausedParams(ctx); err != nil {
		return nil, err
	}
	cfg, err := h.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.RewardsDispatcher == "" {
		return nil, errorsmod.Wrap(ErrContractNotRegistered, "rewards dispatcher")
	}
	delegations, err := h.delegations(ctx, env.ContractAddress)
	if err != nil {
		return nil, err
	}

	res := NewResponse("dispatch_rewards")
	for _, d := range delegations {
		res.AddInstruction(Instruction{Type: InstructionWithdrawReward, Validator: d.Validator})
	}
	res.AddInstruction(Instruction{Type: InstructionDispatchRewards, Contract: cfg.RewardsDispatcher})
	return res, nil
}
