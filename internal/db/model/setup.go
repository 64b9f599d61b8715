package model

import (
	"context"
	"fmt"
	"time"

	"github.com/babylonchain/staking-hub-service/internal/config"
	"github.com/rs/zerolog/log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// index keys are ordered, compound indexes depend on it
type index struct {
	Keys   bson.D
	Unique bool
}

var collections = map[string][]index{
	HubConfigCollection:     {{}},
	HubParametersCollection: {{}},
	LedgerStateCollection:   {{}},
	CurrentBatchCollection:  {{}},
	UnbondHistoryCollection: {{Keys: bson.D{{Key: "released", Value: 1}, {Key: "_id", Value: 1}}}},
	UnbondWaitCollection: {
		{Keys: bson.D{{Key: "address", Value: 1}, {Key: "batch_id", Value: 1}}, Unique: true},
	},
	GuardiansCollection:         {{}},
	PendingBurnCollection:       {{}},
	InstructionOutboxCollection: {{Keys: bson.D{{Key: "state", Value: 1}, {Key: "created_at", Value: 1}}}},
	UnprocessableMsgCollection:  {{}},
}

func Setup(ctx context.Context, cfg *config.Config) error {
	clientOps := options.Client().ApplyURI(cfg.Db.Address)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}
	defer client.Disconnect(ctx) // nolint:errcheck

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database := client.Database(cfg.Db.DbName)

	existing, err := database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	exists := make(map[string]bool, len(existing))
	for _, name := range existing {
		exists[name] = true
	}

	// Collections must exist before the first transaction touches them.
	for collection := range collections {
		if exists[collection] {
			log.Debug().Msg("Collection already exists: " + collection)
			continue
		}
		createCollection(ctx, database, collection)
	}

	for name, idxs := range collections {
		for _, idx := range idxs {
			createIndex(ctx, database, name, idx)
		}
	}

	log.Info().Msg("Collections and Indexes created successfully.")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) {
	if err := database.CreateCollection(ctx, collectionName); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to create collection: " + collectionName)
		return
	}

	log.Debug().Msg("Collection created successfully: " + collectionName)
}

func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) {
	if len(idx.Keys) == 0 {
		return
	}

	index := mongo.IndexModel{
		Keys:    idx.Keys,
		Options: options.Index().SetUnique(idx.Unique),
	}

	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, index); err != nil {
		log.Debug().Msg(fmt.Sprintf("Failed to create index on collection '%s': %v", collectionName, err))
		return
	}

	log.Debug().Msg("Index created successfully on collection: " + collectionName)
}
