// Package memdb is an in-memory DBClient. RunInTx works on a copy of the
// data and swaps it in only when the callback succeeds, which gives the same
// all-or-nothing semantics as the MongoDB implementation.
package memdb

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/babylonchain/staking-hub-service/internal/db"
	"github.com/babylonchain/staking-hub-service/internal/db/model"
	"github.com/babylonchain/staking-hub-service/internal/ledger"
)

type waitKey struct {
	batchID uint64
	address string
}

type hubData struct {
	config    *ledger.HubConfig
	params    *ledger.Parameters
	state     *ledger.State
	batch     *ledger.CurrentBatch
	history   map[uint64]ledger.UnbondHistory
	waits     map[waitKey]sdkmath.Int
	guardians map[string]struct{}
	burns     map[string]sdkmath.Int
	outbox    []model.InstructionOutboxDocument
}

func newHubData() *hubData {
	return &hubData{
		history:   make(map[uint64]ledger.UnbondHistory),
		waits:     make(map[waitKey]sdkmath.Int),
		guardians: make(map[string]struct{}),
		burns:     make(map[string]sdkmath.Int),
	}
}

func (d *hubData) clone() *hubData {
	c := newHubData()
	if d.config != nil {
		cfg := *d.config
		c.config = &cfg
	}
	if d.params != nil {
		p := *d.params
		c.params = &p
	}
	if d.state != nil {
		s := *d.state
		c.state = &s
	}
	if d.batch != nil {
		b := *d.batch
		c.batch = &b
	}
	for k, v := range d.history {
		c.history[k] = v
	}
	for k, v := range d.waits {
		c.waits[k] = v
	}
	for k := range d.guardians {
		c.guardians[k] = struct{}{}
	}
	for k, v := range d.burns {
		c.burns[k] = v
	}
	c.outbox = append(c.outbox, d.outbox...)
	return c
}

type MemDB struct {
	mu            sync.Mutex
	data          *hubData
	unprocessable []model.UnprocessableMessageDocument
	PingErr       error
}

var _ db.DBClient = (*MemDB)(nil)

func New() *MemDB {
	return &MemDB{data: newHubData()}
}

func (m *MemDB) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MemDB) RunInTx(ctx context.Context, fn func(ctx context.Context, store db.HubStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	working := m.data.clone()
	if err := fn(ctx, &txStore{d: working}); err != nil {
		return err
	}
	m.data = working
	return nil
}

func (m *MemDB) SaveUnprocessableMessage(ctx context.Context, messageBody, receipt, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unprocessable = append(m.unprocessable, *model.NewUnprocessableMessageDocument(messageBody, receipt, reason))
	return nil
}

func (m *MemDB) FindUnprocessableMessages(ctx context.Context) ([]model.UnprocessableMessageDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.UnprocessableMessageDocument, len(m.unprocessable))
	copy(out, m.unprocessable)
	return out, nil
}

func (m *MemDB) DeleteUnprocessableMessage(ctx context.Context, receipt interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, msg := range m.unprocessable {
		if msg.Receipt == receipt {
			m.unprocessable = append(m.unprocessable[:i], m.unprocessable[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemDB) FindPendingInstructions(ctx context.Context, limit int64) ([]model.InstructionOutboxDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.InstructionOutboxDocument
	for _, doc := range m.data.outbox {
		if doc.State != model.OutboxPending {
			continue
		}
		out = append(out, doc)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemDB) MarkInstructionsSent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.data.outbox {
		if m.data.outbox[i].ID == id && m.data.outbox[i].State == model.OutboxPending {
			m.data.outbox[i].State = model.OutboxSent
			return nil
		}
	}
	return &db.NotFoundError{Key: id, Message: "no pending outbox entry found"}
}

// txStore implements db.HubStore over a working copy.
type txStore struct {
	d *hubData
}

func notFound(what string) error {
	return errorsmod.Wrap(ledger.ErrStateNotFound, what)
}

func (s *txStore) GetConfig(ctx context.Context) (*ledger.HubConfig, error) {
	if s.d.config == nil {
		return nil, notFound("config")
	}
	cfg := *s.d.config
	return &cfg, nil
}

func (s *txStore) SetConfig(ctx context.Context, cfg *ledger.HubConfig) error {
	c := *cfg
	s.d.config = &c
	return nil
}

func (s *txStore) GetParameters(ctx context.Context) (*ledger.Parameters, error) {
	if s.d.params == nil {
		return nil, notFound("parameters")
	}
	p := *s.d.params
	return &p, nil
}

func (s *txStore) SetParameters(ctx context.Context, params *ledger.Parameters) error {
	p := *params
	s.d.params = &p
	return nil
}

func (s *txStore) GetState(ctx context.Context) (*ledger.State, error) {
	if s.d.state == nil {
		return nil, notFound("state")
	}
	st := *s.d.state
	return &st, nil
}

func (s *txStore) SetState(ctx context.Context, state *ledger.State) error {
	st := *state
	st.TotalIssued = sdkmath.ZeroInt()
	s.d.state = &st
	return nil
}

func (s *txStore) GetCurrentBatch(ctx context.Context) (*ledger.CurrentBatch, error) {
	if s.d.batch == nil {
		return nil, notFound("current batch")
	}
	b := *s.d.batch
	return &b, nil
}

func (s *txStore) SetCurrentBatch(ctx context.Context, batch *ledger.CurrentBatch) error {
	b := *batch
	s.d.batch = &b
	return nil
}

func (s *txStore) GetUnbondHistory(ctx context.Context, batchID uint64) (*ledger.UnbondHistory, error) {
	h, ok := s.d.history[batchID]
	if !ok {
		return nil, notFound(fmt.Sprintf("unbond history %d", batchID))
	}
	return &h, nil
}

func (s *txStore) SetUnbondHistory(ctx context.Context, history *ledger.UnbondHistory) error {
	s.d.history[history.BatchID] = *history
	return nil
}

func (s *txStore) sortedHistory(filter func(ledger.UnbondHistory) bool) []ledger.UnbondHistory {
	var out []ledger.UnbondHistory
	for _, h := range s.d.history {
		if filter(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchID < out[j].BatchID })
	return out
}

func (s *txStore) UnbondHistoryRange(ctx context.Context, startAfter uint64, limit int) ([]ledger.UnbondHistory, error) {
	out := s.sortedHistory(func(h ledger.UnbondHistory) bool { return h.BatchID > startAfter })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *txStore) UnreleasedUnbondHistory(ctx context.Context) ([]ledger.UnbondHistory, error) {
	return s.sortedHistory(func(h ledger.UnbondHistory) bool { return !h.Released }), nil
}

func (s *txStore) GetUnbondWaitEntry(ctx context.Context, batchID uint64, address string) (sdkmath.Int, error) {
	amount, ok := s.d.waits[waitKey{batchID, address}]
	if !ok {
		return sdkmath.ZeroInt(), nil
	}
	return amount, nil
}

func (s *txStore) SetUnbondWaitEntry(ctx context.Context, batchID uint64, address string, amount sdkmath.Int) error {
	s.d.waits[waitKey{batchID, address}] = amount
	return nil
}

func (s *txStore) RemoveUnbondWaitEntry(ctx context.Context, batchID uint64, address string) error {
	delete(s.d.waits, waitKey{batchID, address})
	return nil
}

func (s *txStore) UnbondWaitEntries(ctx context.Context, address string) ([]ledger.UnbondRequest, error) {
	var out []ledger.UnbondRequest
	for k, v := range s.d.waits {
		if k.address == address {
			out = append(out, ledger.UnbondRequest{BatchID: k.batchID, Amount: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchID < out[j].BatchID })
	return out, nil
}

func (s *txStore) IsGuardian(ctx context.Context, address string) (bool, error) {
	_, ok := s.d.guardians[address]
	return ok, nil
}

func (s *txStore) AddGuardian(ctx context.Context, address string) error {
	s.d.guardians[address] = struct{}{}
	return nil
}

func (s *txStore) RemoveGuardian(ctx context.Context, address string) error {
	delete(s.d.guardians, address)
	return nil
}

func (s *txStore) Guardians(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(s.d.guardians))
	for g := range s.d.guardians {
		out = append(out, g)
	}
	sort.Strings(out)
	return out, nil
}

func (s *txStore) GetPendingBurn(ctx context.Context, address string) (sdkmath.Int, error) {
	if amount, ok := s.d.burns[address]; ok {
		return amount, nil
	}
	return sdkmath.ZeroInt(), nil
}

func (s *txStore) SetPendingBurn(ctx context.Context, address string, amount sdkmath.Int) error {
	if amount.IsZero() {
		delete(s.d.burns, address)
		return nil
	}
	s.d.burns[address] = amount
	return nil
}

func (s *txStore) GetOutboxEntry(ctx context.Context, id string) (*model.InstructionOutboxDocument, error) {
	for _, doc := range s.d.outbox {
		if doc.ID == id {
			d := doc
			return &d, nil
		}
	}
	return nil, &db.NotFoundError{Key: id, Message: "no outbox entry found"}
}

func (s *txStore) MarkInstructionsConfirmed(ctx context.Context, id string) error {
	for i := range s.d.outbox {
		if s.d.outbox[i].ID == id && s.d.outbox[i].State != model.OutboxConfirmed {
			s.d.outbox[i].State = model.OutboxConfirmed
			return nil
		}
	}
	return &db.NotFoundError{Key: id, Message: "no unconfirmed outbox entry found"}
}

func (s *txStore) EnqueueInstructions(ctx context.Context, operation string, instructions []ledger.Instruction) error {
	if len(instructions) == 0 {
		return nil
	}
	doc, err := model.NewInstructionOutboxDocument(operation, instructions, time.Now().Unix())
	if err != nil {
		return err
	}
	s.d.outbox = append(s.d.outbox, *doc)
	return nil
}

// Outbox returns a copy of every outbox entry, oldest first.
func (m *MemDB) Outbox() []model.InstructionOutboxDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.InstructionOutboxDocument, len(m.data.outbox))
	copy(out, m.data.outbox)
	return out
}

// WaitEntries returns every wait entry, for invariant checks in tests.
func (m *MemDB) WaitEntries() map[uint64]map[string]sdkmath.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uint64]map[string]sdkmath.Int)
	for k, v := range m.data.waits {
		if out[k.batchID] == nil {
			out[k.batchID] = make(map[string]sdkmath.Int)
		}
		out[k.batchID][k.address] = v
	}
	return out
}
