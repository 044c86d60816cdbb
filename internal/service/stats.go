package service

import (
	"context"

	"chronos-stats/internal/constants"
	"chronos-stats/internal/domain"
	"chronos-stats/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// StatsService serves the read-only views consumed by dashboards.
type StatsService struct {
	repo   *repository.StatsRepository
	logger zerolog.Logger
}

func NewStatsService(repo *repository.StatsRepository, logger zerolog.Logger) *StatsService {
	return &StatsService{repo: repo, logger: logger}
}

func (s *StatsService) TopPlayers(ctx context.Context, limit, offset int) ([]domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	limit = clampLimit(limit)
	offset = max(0, offset)

	players, err := s.repo.TopPlayers(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to list top players")
		return nil, err
	}
	return players, nil
}

func (s *StatsService) SearchPlayers(ctx context.Context, query string) ([]domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	s.logger.Debug().Str("query", query).Msg("searching players")

	players, err := s.repo.SearchPlayers(ctx, query, constants.SearchSuggestionLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to search players")
		return nil, err
	}

	s.logger.Debug().Int("count", len(players)).Str("query", query).Msg("search completed")
	return players, nil
}

func (s *StatsService) Player(ctx context.Context, id int64) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.repo.Player(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withRank(ctx, player)
}

func (s *StatsService) PlayerByHash(ctx context.Context, hash string) (*domain.Player, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.repo.PlayerByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	return s.withRank(ctx, player)
}

func (s *StatsService) withRank(ctx context.Context, player *domain.Player) (*domain.Player, error) {
	rank, err := s.repo.Rank(ctx, player.Rating)
	if err != nil {
		s.logger.Error().Err(err).Int64("player_id", player.ID).Msg("failed to look up rank")
		return nil, err
	}
	player.Rank = &rank
	return player, nil
}

func (s *StatsService) Ranks(ctx context.Context) ([]domain.Rank, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.repo.Ranks(ctx)
}

// PlayerWeapons returns ErrNotFound for unknown players rather than an empty
// list.
func (s *StatsService) PlayerWeapons(ctx context.Context, id int64) ([]domain.Weapon, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if _, err := s.repo.Player(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.PlayerWeapons(ctx, id)
}

func (s *StatsService) WeaponTotals(ctx context.Context, limit int) ([]domain.WeaponTotal, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.repo.WeaponTotals(ctx, clampLimit(limit))
}

func (s *StatsService) Servers(ctx context.Context) ([]domain.Server, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.repo.Servers(ctx)
}

func (s *StatsService) Server(ctx context.Context, id int64) (*domain.Server, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.repo.Server(ctx, id)
}

func (s *StatsService) PopularMaps(ctx context.Context, limit int) ([]domain.Map, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if limit <= 0 {
		limit = constants.PopularMapsLimit
	}
	return s.repo.PopularMaps(ctx, clampLimit(limit))
}

func (s *StatsService) Map(ctx context.Context, name string) (*domain.Map, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.repo.Map(ctx, name)
}

// Summary runs the independent count queries concurrently.
func (s *StatsService) Summary(ctx context.Context) (*domain.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var summary domain.Summary
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		summary.Players, err = s.repo.CountPlayers(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		summary.Servers, err = s.repo.CountServers(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		summary.Maps, err = s.repo.CountMaps(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		summary.TotalKills, err = s.repo.TotalKills(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to build summary")
		return nil, err
	}
	return &summary, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultPageSize
	}
	return min(limit, constants.MaxPageSize)
}
