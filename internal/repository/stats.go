package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"chronos-stats/internal/calc"
	"chronos-stats/internal/constants"
	"chronos-stats/internal/db"
	"chronos-stats/internal/domain"

	"github.com/rs/zerolog"
)

// StatsRepository is the read side used by dashboards and search. It never
// writes.
type StatsRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewStatsRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *StatsRepository {
	return &StatsRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *StatsRepository) TopPlayers(ctx context.Context, limit, offset int) ([]domain.Player, error) {
	players, err := r.queries.ListTopPlayers(ctx, db.ListTopPlayersParams{
		Limit:  int64(limit),
		Offset: int64(offset),
	})
	if err != nil {
		return nil, err
	}
	return toDomainPlayers(players), nil
}

func (r *StatsRepository) SearchPlayers(ctx context.Context, name string, limit int) ([]domain.Player, error) {
	players, err := r.queries.SearchPlayers(ctx, db.SearchPlayersParams{
		Name:  "%" + escapeLike(name) + "%",
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}
	return toDomainPlayers(players), nil
}

func (r *StatsRepository) Player(ctx context.Context, id int64) (*domain.Player, error) {
	p, err := r.queries.GetPlayerByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	player := toDomainPlayer(p)
	return &player, nil
}

func (r *StatsRepository) PlayerByHash(ctx context.Context, hash string) (*domain.Player, error) {
	p, err := r.queries.GetPlayerByHash(ctx, hash)
	if err != nil {
		return nil, notFound(err)
	}
	player := toDomainPlayer(p)
	return &player, nil
}

func (r *StatsRepository) PlayerWeapons(ctx context.Context, playerID int64) ([]domain.Weapon, error) {
	weapons, err := r.queries.ListPlayerWeapons(ctx, playerID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Weapon, len(weapons))
	for i, w := range weapons {
		result[i] = domain.Weapon{
			PlayerID:   w.PlayerID,
			Name:       w.WeaponName,
			Kills:      w.Kills,
			Deaths:     w.Deaths,
			ShotsFired: w.ShotsFired,
			ShotsHit:   w.ShotsHit,
			Headshots:  w.Headshots,
			Accuracy:   calc.Accuracy(w.ShotsHit, w.ShotsFired),
		}
	}
	return result, nil
}

func (r *StatsRepository) WeaponTotals(ctx context.Context, limit int) ([]domain.WeaponTotal, error) {
	totals, err := r.queries.ListWeaponTotals(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	result := make([]domain.WeaponTotal, len(totals))
	for i, w := range totals {
		result[i] = domain.WeaponTotal{
			Name:       w.WeaponName,
			Users:      w.Users,
			Kills:      w.Kills,
			Deaths:     w.Deaths,
			ShotsFired: w.ShotsFired,
			ShotsHit:   w.ShotsHit,
			Headshots:  w.Headshots,
			Accuracy:   calc.Accuracy(w.ShotsHit, w.ShotsFired),
		}
	}
	return result, nil
}

func (r *StatsRepository) Servers(ctx context.Context) ([]domain.Server, error) {
	servers, err := r.queries.ListServers(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Server, len(servers))
	for i, s := range servers {
		result[i] = *toDomainServer(s)
	}
	return result, nil
}

func (r *StatsRepository) Server(ctx context.Context, id int64) (*domain.Server, error) {
	s, err := r.queries.GetServerByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return toDomainServer(s), nil
}

func (r *StatsRepository) PopularMaps(ctx context.Context, limit int) ([]domain.Map, error) {
	maps, err := r.queries.ListPopularMaps(ctx, int64(limit))
	if err != nil {
		return nil, err
	}

	result := make([]domain.Map, len(maps))
	for i, m := range maps {
		result[i] = toDomainMap(m)
	}
	return result, nil
}

func (r *StatsRepository) Map(ctx context.Context, name string) (*domain.Map, error) {
	m, err := r.queries.GetMapByName(ctx, name)
	if err != nil {
		return nil, notFound(err)
	}
	result := toDomainMap(m)
	return &result, nil
}

// Rank returns the highest rank whose threshold the rating reaches. Ratings
// below every threshold get the default rank.
func (r *StatsRepository) Rank(ctx context.Context, rating int64) (domain.Rank, error) {
	rank, err := r.queries.GetRankForRating(ctx, rating)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Rank{Name: constants.DefaultRankName, Icon: constants.DefaultRankIcon}, nil
	}
	if err != nil {
		return domain.Rank{}, err
	}
	return toDomainRank(rank), nil
}

func (r *StatsRepository) Ranks(ctx context.Context) ([]domain.Rank, error) {
	ranks, err := r.queries.ListRanks(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Rank, len(ranks))
	for i, rank := range ranks {
		result[i] = toDomainRank(rank)
	}
	return result, nil
}

func (r *StatsRepository) CountPlayers(ctx context.Context) (int64, error) {
	return r.queries.CountPlayers(ctx)
}

func (r *StatsRepository) CountServers(ctx context.Context) (int64, error) {
	return r.queries.CountServers(ctx)
}

func (r *StatsRepository) CountMaps(ctx context.Context) (int64, error) {
	return r.queries.CountMaps(ctx)
}

func (r *StatsRepository) TotalKills(ctx context.Context) (int64, error) {
	return r.queries.SumPlayerKills(ctx)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func toDomainPlayers(players []db.Player) []domain.Player {
	result := make([]domain.Player, len(players))
	for i, p := range players {
		result[i] = toDomainPlayer(p)
	}
	return result
}

func toDomainPlayer(p db.Player) domain.Player {
	return domain.Player{
		ID:           p.ID,
		Hash:         p.PlayerHash,
		Name:         p.PlayerName,
		Kills:        p.Kills,
		Deaths:       p.Deaths,
		Suicides:     p.Suicides,
		Teamkills:    p.Teamkills,
		Headshots:    p.Headshots,
		Score:        p.Score,
		Playtime:     p.Playtime,
		RoundsPlayed: p.RoundsPlayed,
		Wins:         p.Wins,
		Losses:       p.Losses,
		KDRatio:      p.KdRatio,
		Rating:       p.Rating,
		FirstSeen:    p.FirstSeen,
		LastSeen:     p.LastSeen,
	}
}

func toDomainServer(s db.Server) *domain.Server {
	return &domain.Server{
		ID:             s.ID,
		IP:             s.ServerIp,
		Port:           s.ServerPort,
		Name:           s.ServerName,
		MapName:        s.MapName,
		GameType:       s.GameType,
		MaxPlayers:     s.MaxPlayers,
		CurrentPlayers: s.CurrentPlayers,
		RoundsPlayed:   s.RoundsPlayed,
		FirstSeen:      s.FirstSeen,
		LastSeen:       s.LastSeen,
	}
}

func toDomainMap(m db.MapStat) domain.Map {
	return domain.Map{
		ID:            m.ID,
		Name:          m.MapName,
		Kills:         m.Kills,
		Deaths:        m.Deaths,
		Wins:          m.Wins,
		Losses:        m.Losses,
		PlayTime:      m.PlayTime,
		TimesPlayed:   m.Wins + m.Losses,
		UniquePlayers: m.UniquePlayers,
		FirstSeen:     m.FirstSeen,
		LastSeen:      m.LastSeen,
	}
}

func toDomainRank(r db.Rank) domain.Rank {
	return domain.Rank{Name: r.RankName, MinRating: r.MinRating, Icon: r.Icon}
}
