package db

import (
	"context"
	"errors"
	"time"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/babylonchain/staking-hub-service/internal/db/model"
	"github.com/babylonchain/staking-hub-service/internal/ledger"
)

// mongoStore implements HubStore. The ctx handed to each method is the
// session context of the enclosing transaction.
type mongoStore struct {
	db *Database
}

var upsert = options.Replace().SetUpsert(true)

func (s *mongoStore) findSingleton(ctx context.Context, collection string, out interface{}) error {
	err := s.db.collection(collection).FindOne(ctx, bson.M{"_id": model.SingletonID}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errorsmod.Wrap(ledger.ErrStateNotFound, collection)
	}
	return err
}

func (s *mongoStore) replaceByID(ctx context.Context, collection string, id interface{}, doc interface{}) error {
	_, err := s.db.collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, doc, upsert)
	return err
}

func (s *mongoStore) GetConfig(ctx context.Context) (*ledger.HubConfig, error) {
	var doc model.HubConfigDocument
	if err := s.findSingleton(ctx, model.HubConfigCollection, &doc); err != nil {
		return nil, err
	}
	return doc.ToLedger(), nil
}

func (s *mongoStore) SetConfig(ctx context.Context, cfg *ledger.HubConfig) error {
	return s.replaceByID(ctx, model.HubConfigCollection, model.SingletonID, model.NewHubConfigDocument(cfg))
}

func (s *mongoStore) GetParameters(ctx context.Context) (*ledger.Parameters, error) {
	var doc model.HubParametersDocument
	if err := s.findSingleton(ctx, model.HubParametersCollection, &doc); err != nil {
		return nil, err
	}
	return doc.ToLedger(), nil
}

func (s *mongoStore) SetParameters(ctx context.Context, params *ledger.Parameters) error {
	return s.replaceByID(ctx, model.HubParametersCollection, model.SingletonID, model.NewHubParametersDocument(params))
}

func (s *mongoStore) GetState(ctx context.Context) (*ledger.State, error) {
	var doc model.LedgerStateDocument
	if err := s.findSingleton(ctx, model.LedgerStateCollection, &doc); err != nil {
		return nil, err
	}
	return doc.ToLedger()
}

func (s *mongoStore) SetState(ctx context.Context, state *ledger.State) error {
	return s.replaceByID(ctx, model.LedgerStateCollection, model.SingletonID, model.NewLedgerStateDocument(state))
}

func (s *mongoStore) GetCurrentBatch(ctx context.Context) (*ledger.CurrentBatch, error) {
	var doc model.CurrentBatchDocument
	if err := s.findSingleton(ctx, model.CurrentBatchCollection, &doc); err != nil {
		return nil, err
	}
	return doc.ToLedger()
}

func (s *mongoStore) SetCurrentBatch(ctx context.Context, batch *ledger.CurrentBatch) error {
	return s.replaceByID(ctx, model.CurrentBatchCollection, model.SingletonID, model.NewCurrentBatchDocument(batch))
}

func (s *mongoStore) GetUnbondHistory(ctx context.Context, batchID uint64) (*ledger.UnbondHistory, error) {
	var doc model.UnbondHistoryDocument
	err := s.db.collection(model.UnbondHistoryCollection).
		FindOne(ctx, bson.M{"_id": int64(batchID)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errorsmod.Wrapf(ledger.ErrStateNotFound, "unbond history %d", batchID)
	}
	if err != nil {
		return nil, err
	}
	return doc.ToLedger()
}

func (s *mongoStore) SetUnbondHistory(ctx context.Context, history *ledger.UnbondHistory) error {
	return s.replaceByID(ctx, model.UnbondHistoryCollection, int64(history.BatchID), model.NewUnbondHistoryDocument(history))
}

func (s *mongoStore) findHistory(ctx context.Context, filter bson.M, limit int) ([]ledger.UnbondHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.db.collection(model.UnbondHistoryCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.UnbondHistoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	history := make([]ledger.UnbondHistory, 0, len(docs))
	for i := range docs {
		h, err := docs[i].ToLedger()
		if err != nil {
			return nil, err
		}
		history = append(history, *h)
	}
	return history, nil
}

func (s *mongoStore) UnbondHistoryRange(ctx context.Context, startAfter uint64, limit int) ([]ledger.UnbondHistory, error) {
	return s.findHistory(ctx, bson.M{"_id": bson.M{"$gt": int64(startAfter)}}, limit)
}

func (s *mongoStore) UnreleasedUnbondHistory(ctx context.Context) ([]ledger.UnbondHistory, error) {
	return s.findHistory(ctx, bson.M{"released": false}, 0)
}

func (s *mongoStore) GetUnbondWaitEntry(ctx context.Context, batchID uint64, address string) (sdkmath.Int, error) {
	var doc model.UnbondWaitDocument
	err := s.db.collection(model.UnbondWaitCollection).
		FindOne(ctx, bson.M{"_id": model.UnbondWaitID(batchID, address)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sdkmath.ZeroInt(), nil
	}
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return model.ParseAmount(doc.Amount)
}

func (s *mongoStore) SetUnbondWaitEntry(ctx context.Context, batchID uint64, address string, amount sdkmath.Int) error {
	doc := model.NewUnbondWaitDocument(batchID, address, amount)
	return s.replaceByID(ctx, model.UnbondWaitCollection, doc.ID, doc)
}

func (s *mongoStore) RemoveUnbondWaitEntry(ctx context.Context, batchID uint64, address string) error {
	_, err := s.db.collection(model.UnbondWaitCollection).
		DeleteOne(ctx, bson.M{"_id": model.UnbondWaitID(batchID, address)})
	return err
}

func (s *mongoStore) UnbondWaitEntries(ctx context.Context, address string) ([]ledger.UnbondRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "batch_id", Value: 1}})
	cursor, err := s.db.collection(model.UnbondWaitCollection).Find(ctx, bson.M{"address": address}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.UnbondWaitDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	requests := make([]ledger.UnbondRequest, 0, len(docs))
	for _, d := range docs {
		amount, err := model.ParseAmount(d.Amount)
		if err != nil {
			return nil, err
		}
		requests = append(requests, ledger.UnbondRequest{BatchID: uint64(d.BatchID), Amount: amount})
	}
	return requests, nil
}

func (s *mongoStore) IsGuardian(ctx context.Context, address string) (bool, error) {
	count, err := s.db.collection(model.GuardiansCollection).CountDocuments(ctx, bson.M{"_id": address})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *mongoStore) AddGuardian(ctx context.Context, address string) error {
	return s.replaceByID(ctx, model.GuardiansCollection, address, model.GuardianDocument{Address: address})
}

func (s *mongoStore) RemoveGuardian(ctx context.Context, address string) error {
	_, err := s.db.collection(model.GuardiansCollection).DeleteOne(ctx, bson.M{"_id": address})
	return err
}

func (s *mongoStore) Guardians(ctx context.Context) ([]string, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.collection(model.GuardiansCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.GuardianDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	guardians := make([]string, 0, len(docs))
	for _, d := range docs {
		guardians = append(guardians, d.Address)
	}
	return guardians, nil
}

func (s *mongoStore) GetPendingBurn(ctx context.Context, address string) (sdkmath.Int, error) {
	var doc model.PendingBurnDocument
	err := s.db.collection(model.PendingBurnCollection).FindOne(ctx, bson.M{"_id": address}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return sdkmath.ZeroInt(), nil
	}
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return model.ParseAmount(doc.Amount)
}

func (s *mongoStore) SetPendingBurn(ctx context.Context, address string, amount sdkmath.Int) error {
	if amount.IsZero() {
		_, err := s.db.collection(model.PendingBurnCollection).DeleteOne(ctx, bson.M{"_id": address})
		return err
	}
	doc := model.PendingBurnDocument{Address: address, Amount: amount.String()}
	return s.replaceByID(ctx, model.PendingBurnCollection, address, doc)
}

func (s *mongoStore) EnqueueInstructions(ctx context.Context, operation string, instructions []ledger.Instruction) error {
	if len(instructions) == 0 {
		return nil
	}
	doc, err := model.NewInstructionOutboxDocument(operation, instructions, time.Now().Unix())
	if err != nil {
		return err
	}
	_, err = s.db.collection(model.InstructionOutboxCollection).InsertOne(ctx, doc)
	return err
}
