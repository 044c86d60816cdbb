package server

import (
	"net/http"

	"chronos-stats/internal/config"
	"chronos-stats/internal/decode"
	"chronos-stats/internal/middleware"
	"chronos-stats/internal/monitoring"
	"chronos-stats/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Params struct {
	fx.In

	Ingest  *service.IngestService
	Stats   *service.StatsService
	Config  *config.Config
	Metrics *monitoring.Metrics
	Logger  zerolog.Logger

	// Legacy decodes the opaque legacy upload format. Deployments that
	// accept legacy uploads provide one; without it the legacy endpoint
	// answers 501.
	Legacy decode.LegacyDecoder `optional:"true"`
	// Status decodes status_update uploads the same way.
	Status decode.StatusDecoder `optional:"true"`
}

type TrackerServer struct {
	ingest  *service.IngestService
	stats   *service.StatsService
	legacy  decode.LegacyDecoder
	status  decode.StatusDecoder
	cfg     *config.Config
	metrics *monitoring.Metrics
	logger  zerolog.Logger
}

func NewTrackerServer(p Params) *TrackerServer {
	return &TrackerServer{
		ingest:  p.Ingest,
		stats:   p.Stats,
		legacy:  p.Legacy,
		status:  p.Status,
		cfg:     p.Config,
		metrics: p.Metrics,
		logger:  p.Logger,
	}
}

// Handler builds the full route tree with logging, metrics and CORS applied.
func (s *TrackerServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID(s.logger))
	r.Use(middleware.Metrics(s.metrics))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	if s.cfg.LegacyEnabled {
		r.HandleFunc("/stats_import.php", s.handleLegacyImport)
		r.HandleFunc("/status_update.php", s.handleStatusUpdate)
	}

	r.Route("/api", func(r chi.Router) {
		// method checks live in the handler so the 405 body is JSON
		r.HandleFunc("/track", s.handleTrack)
		r.HandleFunc("/track.php", s.handleTrack)
		if s.cfg.LegacyEnabled {
			r.HandleFunc("/legacy/import", s.handleLegacyImport)
			r.HandleFunc("/legacy/status", s.handleStatusUpdate)
		}

		r.Get("/summary", s.handleSummary)
		r.Get("/players", s.handleTopPlayers)
		r.Get("/players/search", s.handleSearchPlayers)
		r.Get("/players/hash/{playerHash}", s.handlePlayerByHash)
		r.Get("/players/{playerID}", s.handlePlayer)
		r.Get("/players/{playerID}/weapons", s.handlePlayerWeapons)
		r.Get("/servers", s.handleServers)
		r.Get("/servers/{serverID}", s.handleServer)
		r.Get("/maps", s.handleMaps)
		r.Get("/maps/{mapName}", s.handleMap)
		r.Get("/weapons", s.handleWeapons)
		r.Get("/ranks", s.handleRanks)
	})

	return r
}

func (s *TrackerServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.ingest.Ping(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("health check failed")
		errorResponse(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
