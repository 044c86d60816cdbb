package fx

import (
	"database/sql"

	"chronos-stats/internal/aggregate"
	"chronos-stats/internal/config"
	"chronos-stats/internal/database"
	"chronos-stats/internal/db"
	"chronos-stats/internal/logger"
	"chronos-stats/internal/monitoring"
	"chronos-stats/internal/repository"
	"chronos-stats/internal/server"
	"chronos-stats/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

// Core is everything below the HTTP layer.
var Core = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	fx.Provide(monitoring.New),
	// repos
	fx.Provide(repository.NewIdentityRegistry),
	fx.Provide(repository.NewStatsRepository),
	// engine
	fx.Provide(aggregate.NewEngine),
	// svc
	fx.Provide(service.NewIngestService),
	fx.Provide(service.NewStatsService),
)

var Module = fx.Options(
	Core,
	// server
	fx.Provide(server.NewTrackerServer),
)
