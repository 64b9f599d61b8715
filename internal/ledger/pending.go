package ledger

import (
	"context"
	"strconv"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"
)

// fill replaces nil amounts left by state written before pending effects
// were tracked.
func (p *PendingEffects) fill() {
	for _, amount := range []*sdkmath.Int{&p.Delegated, &p.Undelegated, &p.Minted, &p.Burned, &p.Sent} {
		if amount.IsNil() {
			*amount = sdkmath.ZeroInt()
		}
	}
}

// field returns the pending total an instruction type moves, nil for types
// that leave every total unchanged.
func (p *PendingEffects) field(typ InstructionType) *sdkmath.Int {
	switch typ {
	case InstructionDelegate:
		return &p.Delegated
	case InstructionUndelegate:
		return &p.Undelegated
	case InstructionMint:
		return &p.Minted
	case InstructionBurn:
		return &p.Burned
	case InstructionBankSend:
		return &p.Sent
	default:
		return nil
	}
}

// IsZero reports whether every emitted instruction has been confirmed.
func (p PendingEffects) IsZero() bool {
	p.fill()
	return p.Delegated.IsZero() && p.Undelegated.IsZero() && p.Minted.IsZero() &&
		p.Burned.IsZero() && p.Sent.IsZero()
}

// trackPending adds the effects of instructions to state and to the
// per-owner burn records. The caller persists state.
func (h *Hub) trackPending(ctx context.Context, state *State, instructions []Instruction) error {
	state.Pending.fill()
	for _, in := range instructions {
		total := state.Pending.field(in.Type)
		if total == nil || in.Amount == nil {
			continue
		}
		var err error
		if *total, err = checkedAdd(*total, in.Amount.Amount); err != nil {
			return err
		}
		if in.Type != InstructionBurn {
			continue
		}
		burn, err := h.store.GetPendingBurn(ctx, in.Owner)
		if err != nil {
			return err
		}
		if burn, err = checkedAdd(burn, in.Amount.Amount); err != nil {
			return err
		}
		if err := h.store.SetPendingBurn(ctx, in.Owner, burn); err != nil {
			return err
		}
	}
	return nil
}

// ConfirmInstructions clears the pending effects of instructions the
// executor has run on chain. Confirming more than is pending fails with
// ErrPendingMismatch and changes nothing.
func (h *Hub) ConfirmInstructions(ctx context.Context, instructions []Instruction) (*Response, error) {
	state, err := h.store.GetState(ctx)
	if err != nil {
		return nil, err
	}
	state.Pending.fill()

	confirmed := 0
	for _, in := range instructions {
		total := state.Pending.field(in.Type)
		if total == nil || in.Amount == nil {
			continue
		}
		if total.LT(in.Amount.Amount) {
			return nil, errorsmod.Wrapf(ErrPendingMismatch, "%s of %s, pending %s", in.Type, in.Amount.Amount, total)
		}
		*total = total.Sub(in.Amount.Amount)
		confirmed++

		if in.Type != InstructionBurn {
			continue
		}
		burn, err := h.store.GetPendingBurn(ctx, in.Owner)
		if err != nil {
			return nil, err
		}
		if burn.LT(in.Amount.Amount) {
			return nil, errorsmod.Wrapf(ErrPendingMismatch, "burn of %s for %s, pending %s", in.Amount.Amount, in.Owner, burn)
		}
		if err := h.store.SetPendingBurn(ctx, in.Owner, burn.Sub(in.Amount.Amount)); err != nil {
			return nil, err
		}
	}
	if err := h.store.SetState(ctx, state); err != nil {
		return nil, err
	}

	log.Ctx(ctx).Debug().Int("confirmed", confirmed).Msg("pending instructions confirmed")
	return NewResponse("confirm_instructions").
		AddAttribute("confirmed", strconv.Itoa(confirmed)), nil
}

// expectedDelegated is what the staking module will report once every
// pending delegate and undelegate has run.
func expectedDelegated(onChain sdkmath.Int, pending PendingEffects) (sdkmath.Int, error) {
	pending.fill()
	withDelegates, err := checkedAdd(onChain, pending.Delegated)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return saturatingSub(withDelegates, pending.Undelegated), nil
}

// effectiveIssued is the token supply once every pending mint and burn has
// run. Pending burns are already counted in the open batch's requests.
func (h *Hub) effectiveIssued(ctx context.Context, cfg *HubConfig, pending PendingEffects) (sdkmath.Int, error) {
	supply, err := h.totalIssued(ctx, cfg)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	pending.fill()
	withMints, err := checkedAdd(supply, pending.Minted)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return saturatingSub(withMints, pending.Burned), nil
}

// unbondableBalance is the requester's token balance less its burns the
// token contract has not executed yet.
func (h *Hub) unbondableBalance(ctx context.Context, cfg *HubConfig, requester string) (sdkmath.Int, error) {
	balance, err := h.querier.TokenBalance(ctx, cfg.TokenContract, requester)
	if err != nil {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(ErrCollaborator, "token balance: %v", err)
	}
	burn, err := h.store.GetPendingBurn(ctx, requester)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return saturatingSub(balance, burn), nil
}

// effectiveNativeBalance excludes deposits still waiting to be delegated and
// payouts still waiting to be sent from the hub's native balance.
func effectiveNativeBalance(balance sdkmath.Int, pending PendingEffects) sdkmath.Int {
	pending.fill()
	return saturatingSub(saturatingSub(balance, pending.Delegated), pending.Sent)
}
