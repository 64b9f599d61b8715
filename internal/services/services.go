package services

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/babylonchain/staking-hub-service/internal/config"
	"github.com/babylonchain/staking-hub-service/internal/db"
	"github.com/babylonchain/staking-hub-service/internal/ledger"
	"github.com/babylonchain/staking-hub-service/internal/types"
)

// Service layer contains the business logic and is used to interact with
// the database and other external clients (if any).
type Services struct {
	DbClient db.DBClient
	chain    ledger.ChainQuerier
	cfg      *config.Config
	// mu serializes state-changing ledger calls.
	mu  sync.Mutex
	now func() time.Time
}

func New(ctx context.Context, cfg *config.Config, chain ledger.ChainQuerier) (*Services, error) {
	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		log.Ctx(ctx).Fatal().Err(err).Msg("error while creating db client")
		return nil, err
	}
	return NewWithDB(cfg, dbClient, chain), nil
}

// NewWithDB builds the service layer on an existing db client.
func NewWithDB(cfg *config.Config, dbClient db.DBClient, chain ledger.ChainQuerier) *Services {
	return &Services{
		DbClient: dbClient,
		chain:    chain,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetClock replaces the wall clock used as block time.
func (s *Services) SetClock(now func() time.Time) {
	s.now = now
}

// DoHealthCheck checks the health of the services by ping the database.
func (s *Services) DoHealthCheck(ctx context.Context) error {
	return s.DbClient.Ping(ctx)
}

func (s *Services) SaveUnprocessableMessages(ctx context.Context, messageBody, receipt, reason string) error {
	err := s.DbClient.SaveUnprocessableMessage(ctx, messageBody, receipt, reason)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while saving unprocessable message")
		return types.NewErrorWithMsg(http.StatusInternalServerError, types.InternalServiceError, "error while saving unprocessable message")
	}
	return nil
}

func (s *Services) env() ledger.Env {
	return ledger.Env{
		BlockTime:       uint64(s.now().Unix()),
		ContractAddress: s.cfg.Chain.HubAddress,
	}
}

// Instantiate writes the genesis ledger from the hub config section. It is a
// no-op when the ledger already exists.
func (s *Services) Instantiate(ctx context.Context) (bool, *types.Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hubCfg := s.cfg.Hub
	var created bool
	err := s.DbClient.RunInTx(ctx, func(ctx context.Context, store db.HubStore) error {
		var err error
		created, err = ledger.NewHub(store, s.chain).Instantiate(ctx, s.env(), ledger.InstantiateParams{
			Config: ledger.HubConfig{
				Owner:              hubCfg.Owner,
				RewardsDispatcher:  hubCfg.RewardsDispatcher,
				ValidatorsRegistry: hubCfg.ValidatorsRegistry,
				TokenContract:      hubCfg.TokenContract,
			},
			EpochPeriod:     hubCfg.EpochPeriod,
			UnbondingPeriod: hubCfg.UnbondingPeriod,
			UnderlyingDenom: hubCfg.UnderlyingDenom,
			Guardians:       hubCfg.Guardians,
		})
		return err
	})
	if err != nil {
		return false, toApiError(ctx, "instantiate", err)
	}
	if created {
		log.Ctx(ctx).Info().Str("denom", hubCfg.UnderlyingDenom).Msg("hub ledger instantiated")
	}
	return created, nil
}
