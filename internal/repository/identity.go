package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"chronos-stats/internal/db"
	"chronos-stats/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// IdentityRegistry maps external identifiers (player hash, server ip:port)
// to row ids, creating rows on first sight. Write methods take the
// transaction-bound queries of the caller so resolution commits or rolls back
// with the rest of the report.
type IdentityRegistry struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewIdentityRegistry(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *IdentityRegistry {
	return &IdentityRegistry{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// ResolvePlayer returns the id for hash, inserting a zeroed row when the hash
// is new. A concurrent insert of the same hash surfaces as a unique violation
// and is answered by reading the winner's row.
func (r *IdentityRegistry) ResolvePlayer(ctx context.Context, q *db.Queries, hash, name string, now time.Time) (int64, bool, error) {
	id, err := q.GetPlayerIDByHash(ctx, hash)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to look up player %s: %w", hash, err)
	}

	id, err = q.InsertPlayer(ctx, db.InsertPlayerParams{
		PlayerHash: hash,
		PlayerName: name,
		FirstSeen:  now,
		LastSeen:   now,
	})
	if err == nil {
		r.logger.Debug().Str("player_hash", hash).Int64("player_id", id).Msg("player created")
		return id, true, nil
	}
	if !isUniqueViolation(err) {
		return 0, false, fmt.Errorf("failed to insert player %s: %w", hash, err)
	}

	r.logger.Debug().Str("player_hash", hash).Msg("lost player insert race, re-reading")
	id, err = q.GetPlayerIDByHash(ctx, hash)
	if err != nil {
		return 0, false, fmt.Errorf("failed to re-read player %s: %w", hash, err)
	}
	return id, false, nil
}

// ResolveServer is ResolvePlayer for the (ip, port) endpoint.
func (r *IdentityRegistry) ResolveServer(ctx context.Context, q *db.Queries, ip string, port int64, name string, now time.Time) (int64, bool, error) {
	endpoint := db.GetServerIDByEndpointParams{ServerIp: ip, ServerPort: port}

	id, err := q.GetServerIDByEndpoint(ctx, endpoint)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to look up server %s:%d: %w", ip, port, err)
	}

	id, err = q.InsertServer(ctx, db.InsertServerParams{
		ServerIp:   ip,
		ServerPort: port,
		ServerName: name,
		FirstSeen:  now,
		LastSeen:   now,
	})
	if err == nil {
		r.logger.Debug().Str("server_ip", ip).Int64("server_port", port).Int64("server_id", id).Msg("server created")
		return id, true, nil
	}
	if !isUniqueViolation(err) {
		return 0, false, fmt.Errorf("failed to insert server %s:%d: %w", ip, port, err)
	}

	r.logger.Debug().Str("server_ip", ip).Int64("server_port", port).Msg("lost server insert race, re-reading")
	id, err = q.GetServerIDByEndpoint(ctx, endpoint)
	if err != nil {
		return 0, false, fmt.Errorf("failed to re-read server %s:%d: %w", ip, port, err)
	}
	return id, false, nil
}

// ServerByToken looks up the server registered under a legacy serverid token.
func (r *IdentityRegistry) ServerByToken(ctx context.Context, token string) (*domain.Server, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	s, err := r.queries.GetServerByToken(ctx, token)
	if err != nil {
		return nil, notFound(err)
	}
	return toDomainServer(s), nil
}

// RegisterServer issues a fresh serverid token for the endpoint, creating the
// server row if needed. Any previous token for the endpoint stops working.
func (r *IdentityRegistry) RegisterServer(ctx context.Context, ip string, port int64, name string) (int64, string, error) {
	token, err := gonanoid.New()
	if err != nil {
		return 0, "", fmt.Errorf("failed to generate server token: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	id, _, err := r.ResolveServer(ctx, qtx, ip, port, name, time.Now().UTC())
	if err != nil {
		return 0, "", err
	}
	if err := qtx.SetServerToken(ctx, db.SetServerTokenParams{
		ServerToken: sql.NullString{String: token, Valid: true},
		ID:          id,
	}); err != nil {
		return 0, "", fmt.Errorf("failed to set server token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, "", fmt.Errorf("failed to commit server registration: %w", err)
	}

	r.logger.Info().Str("server_ip", ip).Int64("server_port", port).Int64("server_id", id).Msg("server registered")
	return id, token, nil
}
