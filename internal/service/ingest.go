package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chronos-stats/internal/aggregate"
	"chronos-stats/internal/config"
	"chronos-stats/internal/db"
	"chronos-stats/internal/domain"
	"chronos-stats/internal/monitoring"
	"chronos-stats/internal/repository"

	"github.com/rs/zerolog"
)

// IngestService owns the transaction boundary around report aggregation.
type IngestService struct {
	db         *sql.DB
	queries    *db.Queries
	engine     *aggregate.Engine
	identities *repository.IdentityRegistry
	metrics    *monitoring.Metrics
	txTimeout  time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

func NewIngestService(
	sqlDB *sql.DB,
	queries *db.Queries,
	engine *aggregate.Engine,
	identities *repository.IdentityRegistry,
	metrics *monitoring.Metrics,
	cfg *config.Config,
	logger zerolog.Logger,
) *IngestService {
	return &IngestService{
		db:         sqlDB,
		queries:    queries,
		engine:     engine,
		identities: identities,
		metrics:    metrics,
		txTimeout:  cfg.TxTimeout,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Ingest applies a single report in its own transaction.
func (s *IngestService) Ingest(ctx context.Context, transport string, report domain.TelemetryReport) (domain.AggregationResult, error) {
	results, err := s.IngestBatch(ctx, transport, []domain.TelemetryReport{report})
	if err != nil {
		return domain.AggregationResult{}, err
	}
	return results[0], nil
}

// IngestBatch applies every report in one transaction: either all of them
// are reflected in the totals or none are. Failures come back as
// *domain.TransientStoreError.
func (s *IngestService) IngestBatch(ctx context.Context, transport string, reports []domain.TelemetryReport) ([]domain.AggregationResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.IngestDuration.WithLabelValues(transport).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		logger = &s.logger
	}

	results, err := s.applyAll(ctx, reports)
	if err != nil {
		s.metrics.ObserveReport(transport, monitoring.OutcomeStoreError, len(reports))
		logger.Error().
			Err(err).
			Str("transport", transport).
			Int("reports", len(reports)).
			Bool("retryable", repository.IsRetryable(err)).
			Msg("report transaction failed")
		return nil, &domain.TransientStoreError{Op: "ingest", Err: err}
	}

	s.metrics.ObserveReport(transport, monitoring.OutcomeOK, len(reports))
	for _, r := range results {
		if r.PlayerCreated {
			s.metrics.PlayersCreated.Inc()
		}
		if r.ServerCreated {
			s.metrics.ServersCreated.Inc()
		}
	}

	logger.Info().
		Str("transport", transport).
		Int("reports", len(reports)).
		Dur("duration", time.Since(start)).
		Msg("reports ingested")
	return results, nil
}

func (s *IngestService) applyAll(ctx context.Context, reports []domain.TelemetryReport) ([]domain.AggregationResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	now := s.now()

	results := make([]domain.AggregationResult, 0, len(reports))
	for _, report := range reports {
		result, err := s.engine.Apply(ctx, qtx, report, now)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return results, nil
}

// UpdateStatus overwrites the descriptive fields of an authenticated server
// without counting a round. Failures come back as *domain.TransientStoreError.
func (s *IngestService) UpdateStatus(ctx context.Context, server domain.Server, snap domain.ServerSnapshot) error {
	start := time.Now()
	defer func() {
		s.metrics.IngestDuration.WithLabelValues(monitoring.TransportStatus).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	affected, err := s.queries.ApplyServerSnapshot(ctx, db.ApplyServerSnapshotParams{
		ServerName:     snap.Name,
		MapName:        snap.MapName,
		GameType:       snap.GameType,
		MaxPlayers:     snap.MaxPlayers,
		CurrentPlayers: snap.CurrentPlayers,
		RoundsPlayed:   0,
		LastSeen:       s.now(),
		ID:             server.ID,
	})
	if err == nil && affected != 1 {
		err = fmt.Errorf("%d rows affected", affected)
	}
	if err != nil {
		s.metrics.ObserveReport(monitoring.TransportStatus, monitoring.OutcomeStoreError, 1)
		s.logger.Error().Err(err).Int64("server_id", server.ID).Msg("status update failed")
		return &domain.TransientStoreError{Op: "status", Err: fmt.Errorf("failed to update server %d: %w", server.ID, err)}
	}

	s.metrics.ObserveReport(monitoring.TransportStatus, monitoring.OutcomeOK, 1)
	return nil
}

// AuthenticateServer resolves a legacy serverid token. Unknown tokens give
// *domain.AuthError; a failed lookup gives *domain.TransientStoreError.
func (s *IngestService) AuthenticateServer(ctx context.Context, token string) (*domain.Server, error) {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	server, err := s.identities.ServerByToken(ctx, token)
	if err == nil {
		return server, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.AuthError{Reason: "unknown server id"}
	}
	s.logger.Error().Err(err).Msg("server token lookup failed")
	return nil, &domain.TransientStoreError{Op: "authenticate", Err: err}
}

func (s *IngestService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}
