package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/babylonchain/staking-hub-service/cmd/staking-hub-service/cli"
	"github.com/babylonchain/staking-hub-service/cmd/staking-hub-service/scripts"
	"github.com/babylonchain/staking-hub-service/internal/api"
	"github.com/babylonchain/staking-hub-service/internal/clients"
	"github.com/babylonchain/staking-hub-service/internal/config"
	"github.com/babylonchain/staking-hub-service/internal/db/model"
	"github.com/babylonchain/staking-hub-service/internal/jobs"
	"github.com/babylonchain/staking-hub-service/internal/observability/healthcheck"
	"github.com/babylonchain/staking-hub-service/internal/observability/metrics"
	"github.com/babylonchain/staking-hub-service/internal/queue"
	"github.com/babylonchain/staking-hub-service/internal/services"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("failed to load .env file")
	}
}

func main() {
	ctx := context.Background()

	// setup cli commands and flags
	if err := cli.Setup(); err != nil {
		log.Fatal().Err(err).Msg("error while setting up cli")
	}

	// load config
	cfgPath := cli.GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	err = model.Setup(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up staking hub db model")
	}

	clients := clients.New(cfg)
	services, err := services.New(ctx, cfg, clients.Chain)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up staking hub services layer")
	}
	if _, instErr := services.Instantiate(ctx); instErr != nil {
		log.Fatal().Err(instErr).Msg("error while instantiating the hub ledger")
	}

	queues := queue.New(&cfg.Queue, services)

	// Check if the replay flag is set
	if cli.GetReplayFlag() {
		log.Info().Msg("Replay flag is set. Starting replay of unprocessable messages.")
		err := scripts.ReplayUnprocessableMessages(ctx, queues, services.DbClient)
		if err != nil {
			log.Fatal().Err(err).Msg("error while replaying unprocessable messages")
		}
		return
	}

	// Start the event queue processing
	queues.StartReceivingMessages()

	if err := healthcheck.StartHealthCheckCron(ctx, queues, cfg.Server.HealthCheckInterval); err != nil {
		log.Fatal().Err(err).Msg("error while starting health check cron")
	}

	if err := jobs.New(services, queues.PublishInstructions).Start(ctx, cfg.Jobs); err != nil {
		log.Fatal().Err(err).Msg("error while starting hub jobs")
	}

	apiServer, err := api.New(ctx, cfg, services)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up staking hub api service")
	}
	if err = apiServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("error while starting staking hub api service")
	}
}
