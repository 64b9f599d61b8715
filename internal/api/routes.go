package api

import (
	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/babylonchain/staking-hub-service/docs"
	"github.com/babylonchain/staking-hub-service/internal/api/middlewares"
)

func (a *Server) SetupRoutes(r *chi.Mux) {
	handlers := a.handlers
	r.Get("/healthcheck", registerHandler(handlers.HealthCheck))

	r.Group(func(r chi.Router) {
		r.Use(middlewares.RelayAuthMiddleware(a.cfg))
		r.Post("/v1/bond", registerHandler(handlers.Bond))
		r.Post("/v1/bond-rewards", registerHandler(handlers.BondRewards))
		r.Post("/v1/unbond", registerHandler(handlers.Unbond))
		r.Post("/v1/withdraw-unbonded", registerHandler(handlers.WithdrawUnbonded))
		r.Post("/v1/redelegate", registerHandler(handlers.Redelegate))
		r.Post("/v1/instructions/confirm", registerHandler(handlers.ConfirmInstructions))
	})
	// sender-independent, anyone may trigger them
	r.Post("/v1/check-slashing", registerHandler(handlers.CheckSlashing))
	r.Post("/v1/dispatch-rewards", registerHandler(handlers.DispatchRewards))

	r.Get("/v1/state", registerHandler(handlers.GetState))
	r.Get("/v1/current-batch", registerHandler(handlers.GetCurrentBatch))
	r.Get("/v1/parameters", registerHandler(handlers.GetParameters))
	r.Get("/v1/config", registerHandler(handlers.GetConfig))
	r.Get("/v1/guardians", registerHandler(handlers.GetGuardians))
	r.Get("/v1/unbond-requests", registerHandler(handlers.GetUnbondRequests))
	r.Get("/v1/history", registerHandler(handlers.GetAllHistory))
	r.Get("/v1/withdrawable", registerHandler(handlers.GetWithdrawable))

	r.Route("/v1/admin", func(r chi.Router) {
		r.Use(middlewares.AdminAuthMiddleware(a.cfg))
		r.Post("/pause", registerHandler(handlers.Pause))
		r.Post("/unpause", registerHandler(handlers.Unpause))
		r.Post("/guardians", registerHandler(handlers.AddGuardians))
		r.Delete("/guardians", registerHandler(handlers.RemoveGuardians))
		r.Post("/params", registerHandler(handlers.UpdateParams))
		r.Post("/config", registerHandler(handlers.UpdateConfig))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
