package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/matefinder/internal/config"
	"github.com/ivankudzin/matefinder/internal/transport/http/handlers"
)

type Dependencies struct {
	Stats  handlers.StatsReader
	Logger *zap.Logger
	Config config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	statsHandler := handlers.NewStatsHandler(deps.Stats)
	adminMW := AdminTokenMiddleware(deps.Config.Admin.Token, deps.Logger)

	r.Get("/healthz", healthHandler.Get)
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminMW)
		r.Get("/stats", statsHandler.Get)
	})
}
