// Package jobs runs the periodic work of the hub: relaying the instruction
// outbox to the broker and reconciling the ledger against the chain.
package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/babylonchain/staking-hub-service/internal/config"
	"github.com/babylonchain/staking-hub-service/internal/observability/metrics"
	"github.com/babylonchain/staking-hub-service/internal/observability/tracing"
	"github.com/babylonchain/staking-hub-service/internal/services"
)

const keeperSender = "keeper"

type Jobs struct {
	cron     *cron.Cron
	services *services.Services
	publish  services.Publisher
}

func New(svc *services.Services, publish services.Publisher) *Jobs {
	return &Jobs{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		services: svc,
		publish:  publish,
	}
}

// Start schedules the jobs and stops them when ctx is done. A zero check
// slashing interval leaves reconciliation to the inbound events.
func (j *Jobs) Start(ctx context.Context, cfg config.JobsConfig) error {
	if _, err := j.cron.AddFunc(fmt.Sprintf("@every %ds", cfg.OutboxRelayInterval), func() {
		j.RelayOutbox(ctx)
	}); err != nil {
		return err
	}
	if cfg.CheckSlashingInterval > 0 {
		if _, err := j.cron.AddFunc(fmt.Sprintf("@every %ds", cfg.CheckSlashingInterval), func() {
			j.CheckSlashing(ctx)
		}); err != nil {
			return err
		}
	}

	j.cron.Start()
	log.Info().
		Int("outboxRelayInterval", cfg.OutboxRelayInterval).
		Int("checkSlashingInterval", cfg.CheckSlashingInterval).
		Msg("Initiated hub jobs")

	go func() {
		<-ctx.Done()
		log.Info().Msg("Stopping hub jobs")
		<-j.cron.Stop().Done()
	}()
	return nil
}

func jobContext(ctx context.Context, name string) context.Context {
	ctx = tracing.AttachTracingIntoContext(ctx)
	logger := log.With().
		Str("job", name).
		Interface("traceId", ctx.Value(tracing.TraceIdKey)).
		Logger()
	return logger.WithContext(ctx)
}

// RelayOutbox publishes every pending instruction batch.
func (j *Jobs) RelayOutbox(ctx context.Context) {
	ctx = jobContext(ctx, "relay_outbox")
	timer := metrics.StartProcessFuncTimer("relay_outbox")

	relayed, err := j.services.RelayInstructions(ctx, j.publish)
	if err != nil {
		timer(metrics.Error)
		log.Ctx(ctx).Error().Err(err).Int("relayed", relayed).Msg("outbox relay stopped early")
		return
	}
	timer(metrics.Success)
	if relayed > 0 {
		log.Ctx(ctx).Info().Int("relayed", relayed).Msg("relayed instruction batches")
	}
}

// CheckSlashing reconciles the ledger with the delegations on chain.
func (j *Jobs) CheckSlashing(ctx context.Context) {
	ctx = jobContext(ctx, "check_slashing")
	timer := metrics.StartProcessFuncTimer("check_slashing")

	res, err := j.services.CheckSlashing(ctx, services.Call{Sender: keeperSender})
	if err != nil {
		timer(metrics.Error)
		if services.IsRejection(err) {
			log.Ctx(ctx).Warn().Err(err).Msg("check slashing skipped")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("check slashing failed")
		return
	}
	timer(metrics.Success)
	if rate, ok := res.Attribute("new_exchange_rate"); ok {
		log.Ctx(ctx).Debug().Str("exchangeRate", rate).Msg("ledger reconciled")
	}
}
