package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/babylonchain/staking-hub-service/internal/db/model"
)

// FindPendingInstructions returns up to limit pending outbox entries, oldest first.
func (db *Database) FindPendingInstructions(ctx context.Context, limit int64) ([]model.InstructionOutboxDocument, error) {
	client := db.collection(model.InstructionOutboxCollection)
	filter := bson.M{"state": model.OutboxPending}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(limit)

	cursor, err := client.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []model.InstructionOutboxDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (db *Database) MarkInstructionsSent(ctx context.Context, id string) error {
	client := db.collection(model.InstructionOutboxCollection)
	filter := bson.M{"_id": id, "state": model.OutboxPending}
	update := bson.M{"$set": bson.M{"state": model.OutboxSent}}

	result, err := client.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &NotFoundError{
			Key:     id,
			Message: "no pending outbox entry found",
		}
	}
	return nil
}

func (s *mongoStore) GetOutboxEntry(ctx context.Context, id string) (*model.InstructionOutboxDocument, error) {
	var doc model.InstructionOutboxDocument
	err := s.db.collection(model.InstructionOutboxCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &NotFoundError{
			Key:     id,
			Message: "no outbox entry found",
		}
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarkInstructionsConfirmed moves a pending or sent entry to CONFIRMED.
func (s *mongoStore) MarkInstructionsConfirmed(ctx context.Context, id string) error {
	client := s.db.collection(model.InstructionOutboxCollection)
	filter := bson.M{"_id": id, "state": bson.M{"$ne": model.OutboxConfirmed}}
	update := bson.M{"$set": bson.M{"state": model.OutboxConfirmed}}

	result, err := client.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return &NotFoundError{
			Key:     id,
			Message: "no unconfirmed outbox entry found",
		}
	}
	return nil
}
