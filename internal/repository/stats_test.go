package repository

import (
	"context"
	"math"
	"testing"
	"time"

	"chronos-stats/internal/db"
	"chronos-stats/internal/domain"
	"chronos-stats/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seededPlayer struct {
	hash, name                   string
	kills, deaths, score, rating int64
	weapon                       string
	shots, hits                  int64
}

func seedStats(t *testing.T) (*StatsRepository, map[string]int64) {
	t.Helper()

	sqlDB, q := testutil.OpenDB(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	players := []seededPlayer{
		{hash: "h1", name: "Ace", kills: 10, deaths: 2, score: 50, rating: 8, weapon: "Thompson", shots: 100, hits: 40},
		{hash: "h2", name: "Bee_Sniper", kills: 4, deaths: 4, score: 90, rating: 0, weapon: "Thompson", shots: 10, hits: 1},
		{hash: "h3", name: "100%Cat", kills: 7, deaths: 1, score: 20, rating: 6, weapon: "Kar98", shots: 0, hits: 0},
	}

	ids := map[string]int64{}
	for _, p := range players {
		id, err := q.InsertPlayer(ctx, db.InsertPlayerParams{PlayerHash: p.hash, PlayerName: p.name, FirstSeen: now, LastSeen: now})
		require.NoError(t, err)
		_, err = q.AddPlayerDeltas(ctx, db.AddPlayerDeltasParams{
			PlayerName: p.name, Kills: p.kills, Deaths: p.deaths, Score: p.score, RoundsPlayed: 1, LastSeen: now, ID: id,
		})
		require.NoError(t, err)
		require.NoError(t, q.UpdatePlayerDerived(ctx, db.UpdatePlayerDerivedParams{Rating: p.rating, ID: id}))
		require.NoError(t, q.AddWeaponDeltas(ctx, db.AddWeaponDeltasParams{
			PlayerID: id, WeaponName: p.weapon, Kills: p.kills, ShotsFired: p.shots, ShotsHit: p.hits,
		}))
		ids[p.hash] = id
	}

	require.NoError(t, q.EnsureMap(ctx, db.EnsureMapParams{MapName: "dm/mohdm1", FirstSeen: now, LastSeen: now}))
	for _, hash := range []string{"h1", "h2", "h1"} {
		mapID, err := q.AddMapDeltas(ctx, db.AddMapDeltasParams{Kills: 1, Wins: 1, LastSeen: now, MapName: "dm/mohdm1"})
		require.NoError(t, err)
		require.NoError(t, q.AddMapPlayer(ctx, db.AddMapPlayerParams{MapID: mapID, PlayerID: ids[hash]}))
	}

	_, err := q.InsertServer(ctx, db.InsertServerParams{ServerIp: "10.0.0.1", ServerPort: 12203, ServerName: "Omaha", FirstSeen: now, LastSeen: now})
	require.NoError(t, err)

	return NewStatsRepository(sqlDB, q, zerolog.Nop()), ids
}

func TestStatsRepository_Players(t *testing.T) {
	repo, ids := seedStats(t)
	ctx := context.Background()

	top, err := repo.TopPlayers(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"Ace", "100%Cat", "Bee_Sniper"}, []string{top[0].Name, top[1].Name, top[2].Name})

	page, err := repo.TopPlayers(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "100%Cat", page[0].Name)

	p, err := repo.Player(ctx, ids["h1"])
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Kills)

	byHash, err := repo.PlayerByHash(ctx, "h2")
	require.NoError(t, err)
	assert.Equal(t, ids["h2"], byHash.ID)

	_, err = repo.Player(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.PlayerByHash(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatsRepository_SearchEscapesWildcards(t *testing.T) {
	repo, _ := seedStats(t)
	ctx := context.Background()

	tests := []struct {
		query string
		want  []string
	}{
		{query: "e", want: []string{"Bee_Sniper", "Ace"}},
		{query: "_", want: []string{"Bee_Sniper"}},
		{query: "%", want: []string{"100%Cat"}},
		{query: "zzz", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			players, err := repo.SearchPlayers(ctx, tt.query, 10)
			require.NoError(t, err)

			var names []string
			for _, p := range players {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestStatsRepository_Weapons(t *testing.T) {
	repo, ids := seedStats(t)
	ctx := context.Background()

	weapons, err := repo.PlayerWeapons(ctx, ids["h1"])
	require.NoError(t, err)
	require.Len(t, weapons, 1)
	assert.Equal(t, "Thompson", weapons[0].Name)
	assert.Equal(t, 40.0, weapons[0].Accuracy)

	totals, err := repo.WeaponTotals(ctx, 10)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Thompson", totals[0].Name)
	assert.Equal(t, int64(2), totals[0].Users)
	assert.Equal(t, int64(14), totals[0].Kills)
	assert.Equal(t, 37.27, totals[0].Accuracy)
	assert.Equal(t, "Kar98", totals[1].Name)
	assert.Zero(t, totals[1].Accuracy)
}

func TestStatsRepository_MapsServersCounts(t *testing.T) {
	repo, _ := seedStats(t)
	ctx := context.Background()

	m, err := repo.Map(ctx, "dm/mohdm1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.Wins)
	assert.Equal(t, int64(3), m.TimesPlayed)
	assert.Equal(t, int64(2), m.UniquePlayers)

	_, err = repo.Map(ctx, "dm/unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	maps, err := repo.PopularMaps(ctx, 5)
	require.NoError(t, err)
	require.Len(t, maps, 1)

	servers, err := repo.Servers(ctx)
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, "Omaha", servers[0].Name)

	_, err = repo.Server(ctx, servers[0].ID+1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	players, err := repo.CountPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), players)

	kills, err := repo.TotalKills(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(21), kills)

	mapCount, err := repo.CountMaps(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mapCount)
}

func TestStatsRepository_Rank(t *testing.T) {
	sqlDB, q := testutil.OpenDB(t)
	repo := NewStatsRepository(sqlDB, q, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		rating int64
		want   string
	}{
		{rating: 0, want: "Recruit"},
		{rating: 49, want: "Recruit"},
		{rating: 50, want: "Private"},
		{rating: 2499, want: "Lieutenant"},
		{rating: math.MaxInt64, want: "General"},
	}
	for _, tt := range tests {
		rank, err := repo.Rank(ctx, tt.rating)
		require.NoError(t, err)
		assert.Equal(t, tt.want, rank.Name, "rating %d", tt.rating)
	}

	ranks, err := repo.Ranks(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, ranks)
	assert.Equal(t, domain.Rank{Name: "Recruit", MinRating: 0, Icon: "rank_0.png"}, ranks[0])
	for i := 1; i < len(ranks); i++ {
		assert.Greater(t, ranks[i].MinRating, ranks[i-1].MinRating)
	}

	_, err = sqlDB.Exec("DELETE FROM ranks")
	require.NoError(t, err)
	rank, err := repo.Rank(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, domain.Rank{Name: "Recruit", Icon: "rank_0.png"}, rank)
}
