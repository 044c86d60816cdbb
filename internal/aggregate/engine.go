// Package aggregate merges telemetry reports into the cumulative player,
// weapon, map and server rows. It is the only writer of those rows besides
// the identity registry.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"chronos-stats/internal/calc"
	"chronos-stats/internal/config"
	"chronos-stats/internal/db"
	"chronos-stats/internal/domain"
	"chronos-stats/internal/repository"

	"github.com/rs/zerolog"
)

// Engine holds no mutable state; every call works only through the queries
// it is handed.
type Engine struct {
	identities *repository.IdentityRegistry
	weights    calc.Weights
	logger     zerolog.Logger
}

func NewEngine(identities *repository.IdentityRegistry, cfg *config.Config, logger zerolog.Logger) *Engine {
	return &Engine{identities: identities, weights: cfg.Rating, logger: logger}
}

// Apply merges one report. q must be bound to the caller's transaction: an
// error leaves partial writes that the caller is expected to roll back.
func (e *Engine) Apply(ctx context.Context, q *db.Queries, report domain.TelemetryReport, now time.Time) (domain.AggregationResult, error) {
	var result domain.AggregationResult

	if report.Server != nil {
		serverID, created, err := e.applyServer(ctx, q, report.Server, now)
		if err != nil {
			return result, err
		}
		result.ServerID = &serverID
		result.ServerCreated = created
	}

	playerID, created, err := e.applyPlayer(ctx, q, report.Player, now)
	if err != nil {
		return result, err
	}
	result.PlayerID = playerID
	result.PlayerCreated = created

	for _, w := range report.Weapons {
		if err := q.AddWeaponDeltas(ctx, db.AddWeaponDeltasParams{
			PlayerID:   playerID,
			WeaponName: w.Name,
			Kills:      w.Kills,
			Deaths:     w.Deaths,
			ShotsFired: w.ShotsFired,
			ShotsHit:   w.ShotsHit,
			Headshots:  w.Headshots,
		}); err != nil {
			return result, fmt.Errorf("failed to add weapon %s for player %d: %w", w.Name, playerID, err)
		}
	}

	if report.Server != nil && report.Server.MapName != "" {
		if err := e.applyMap(ctx, q, report.Server.MapName, playerID, report.Player, now); err != nil {
			return result, err
		}
	}

	if err := e.refreshDerived(ctx, q, playerID); err != nil {
		return result, err
	}

	e.logger.Debug().
		Int64("player_id", playerID).
		Bool("player_created", result.PlayerCreated).
		Int("weapons", len(report.Weapons)).
		Bool("has_server", report.Server != nil).
		Msg("report applied")

	return result, nil
}

func (e *Engine) applyServer(ctx context.Context, q *db.Queries, s *domain.ServerSnapshot, now time.Time) (int64, bool, error) {
	id, created, err := e.identities.ResolveServer(ctx, q, s.IP, s.Port, s.Name, now)
	if err != nil {
		return 0, false, err
	}

	// one report is one round for the server, whatever the counters say
	affected, err := q.ApplyServerSnapshot(ctx, db.ApplyServerSnapshotParams{
		ServerName:     s.Name,
		MapName:        s.MapName,
		GameType:       s.GameType,
		MaxPlayers:     s.MaxPlayers,
		CurrentPlayers: s.CurrentPlayers,
		RoundsPlayed:   1,
		LastSeen:       now,
		ID:             id,
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to update server %d: %w", id, err)
	}
	if affected != 1 {
		return 0, false, fmt.Errorf("failed to update server %d: %d rows affected", id, affected)
	}
	return id, created, nil
}

func (e *Engine) applyPlayer(ctx context.Context, q *db.Queries, p domain.PlayerDelta, now time.Time) (int64, bool, error) {
	id, created, err := e.identities.ResolvePlayer(ctx, q, p.Hash, p.Name, now)
	if err != nil {
		return 0, false, err
	}

	affected, err := q.AddPlayerDeltas(ctx, db.AddPlayerDeltasParams{
		PlayerName:   p.Name,
		Kills:        p.Kills,
		Deaths:       p.Deaths,
		Suicides:     p.Suicides,
		Teamkills:    p.Teamkills,
		Headshots:    p.Headshots,
		Score:        p.Score,
		Playtime:     p.Playtime,
		RoundsPlayed: p.Rounds,
		Wins:         p.Wins,
		Losses:       p.Losses,
		LastSeen:     now,
		ID:           id,
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to update player %d: %w", id, err)
	}
	if affected != 1 {
		return 0, false, fmt.Errorf("failed to update player %d: %d rows affected", id, affected)
	}
	return id, created, nil
}

func (e *Engine) applyMap(ctx context.Context, q *db.Queries, name string, playerID int64, p domain.PlayerDelta, now time.Time) error {
	if err := q.EnsureMap(ctx, db.EnsureMapParams{MapName: name, FirstSeen: now, LastSeen: now}); err != nil {
		return fmt.Errorf("failed to create map %s: %w", name, err)
	}

	mapID, err := q.AddMapDeltas(ctx, db.AddMapDeltasParams{
		Kills:    p.Kills,
		Deaths:   p.Deaths,
		Wins:     p.Wins,
		Losses:   p.Losses,
		PlayTime: p.Playtime,
		LastSeen: now,
		MapName:  name,
	})
	if err != nil {
		return fmt.Errorf("failed to update map %s: %w", name, err)
	}

	if err := q.AddMapPlayer(ctx, db.AddMapPlayerParams{MapID: mapID, PlayerID: playerID}); err != nil {
		return fmt.Errorf("failed to record player %d on map %s: %w", playerID, name, err)
	}
	return nil
}

// refreshDerived recomputes kd_ratio and rating from the merged totals so the
// stored values can never drift from the counters.
func (e *Engine) refreshDerived(ctx context.Context, q *db.Queries, playerID int64) error {
	p, err := q.GetPlayerByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to read player %d: %w", playerID, err)
	}

	rating := calc.Rating(calc.RatingInput{
		Kills:     p.Kills,
		Deaths:    p.Deaths,
		Headshots: p.Headshots,
		Teamkills: p.Teamkills,
	}, e.weights)

	if err := q.UpdatePlayerDerived(ctx, db.UpdatePlayerDerivedParams{
		KdRatio: calc.KDRatio(p.Kills, p.Deaths),
		Rating:  rating,
		ID:      playerID,
	}); err != nil {
		return fmt.Errorf("failed to update derived stats for player %d: %w", playerID, err)
	}
	return nil
}
