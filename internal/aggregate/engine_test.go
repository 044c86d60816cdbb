package aggregate

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"chronos-stats/internal/calc"
	"chronos-stats/internal/db"
	"chronos-stats/internal/domain"
	"chronos-stats/internal/repository"
	"chronos-stats/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	sqlDB   *sql.DB
	queries *db.Queries
	engine  *Engine
}

func newFixture(t *testing.T, weights calc.Weights) *engineFixture {
	t.Helper()

	sqlDB, queries := testutil.OpenDB(t)
	cfg := testutil.Config()
	cfg.Rating = weights

	identities := repository.NewIdentityRegistry(sqlDB, queries, zerolog.Nop())
	return &engineFixture{
		sqlDB:   sqlDB,
		queries: queries,
		engine:  NewEngine(identities, cfg, zerolog.Nop()),
	}
}

// apply runs one report in its own committed transaction.
func (f *engineFixture) apply(t *testing.T, report domain.TelemetryReport, now time.Time) domain.AggregationResult {
	t.Helper()
	ctx := context.Background()

	tx, err := f.sqlDB.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	result, err := f.engine.Apply(ctx, f.queries.WithTx(tx), report, now)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	return result
}

func omaha() *domain.ServerSnapshot {
	return &domain.ServerSnapshot{
		Name: "Omaha Public", IP: "10.0.0.5", Port: 12203,
		MapName: "obj/obj_team2", GameType: "obj", MaxPlayers: 32, CurrentPlayers: 18,
	}
}

func TestApply_AccumulatesPlayerAndServer(t *testing.T) {
	f := newFixture(t, calc.DefaultWeights())
	ctx := context.Background()
	t0 := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)

	first := f.apply(t, domain.TelemetryReport{
		Server: omaha(),
		Player: domain.PlayerDelta{Name: "Ace", Hash: "h1", Kills: 5, Deaths: 1, Headshots: 2, Rounds: 1, Wins: 1, Playtime: 300},
	}, t0)
	assert.True(t, first.PlayerCreated)
	assert.True(t, first.ServerCreated)
	require.NotNil(t, first.ServerID)

	snapshot := omaha()
	snapshot.Name = "Omaha Renamed"
	snapshot.CurrentPlayers = 4
	second := f.apply(t, domain.TelemetryReport{
		Server: snapshot,
		Player: domain.PlayerDelta{Name: "Ace v2", Hash: "h1", Kills: 5, Deaths: 1, Rounds: 1, Losses: 1, Playtime: 200},
	}, t0.Add(time.Minute))
	assert.False(t, second.PlayerCreated)
	assert.False(t, second.ServerCreated)
	assert.Equal(t, first.PlayerID, second.PlayerID)
	assert.Equal(t, *first.ServerID, *second.ServerID)

	p, err := f.queries.GetPlayerByID(ctx, first.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, "Ace v2", p.PlayerName)
	assert.Equal(t, int64(10), p.Kills)
	assert.Equal(t, int64(2), p.Deaths)
	assert.Equal(t, int64(2), p.Headshots)
	assert.Equal(t, int64(2), p.RoundsPlayed)
	assert.Equal(t, int64(1), p.Wins)
	assert.Equal(t, int64(1), p.Losses)
	assert.Equal(t, int64(500), p.Playtime)
	assert.Equal(t, 5.0, p.KdRatio)
	assert.Equal(t, int64(10-2+2*2), p.Rating)
	assert.True(t, p.FirstSeen.Equal(t0))
	assert.True(t, p.LastSeen.Equal(t0.Add(time.Minute)))

	s, err := f.queries.GetServerByID(ctx, *first.ServerID)
	require.NoError(t, err)
	assert.Equal(t, "Omaha Renamed", s.ServerName)
	assert.Equal(t, int64(4), s.CurrentPlayers)
	assert.Equal(t, int64(2), s.RoundsPlayed)
}

func TestApply_Weapons(t *testing.T) {
	f := newFixture(t, calc.DefaultWeights())
	ctx := context.Background()
	now := time.Now().UTC()

	report := domain.TelemetryReport{
		Player: domain.PlayerDelta{Name: "Ace", Hash: "h1", Rounds: 1},
		Weapons: []domain.WeaponDelta{
			{Name: "Thompson", Kills: 3, ShotsFired: 50, ShotsHit: 20},
			{Name: "Colt .45", Kills: 1, ShotsFired: 5, ShotsHit: 1},
		},
	}
	result := f.apply(t, report, now)
	f.apply(t, report, now)

	weapons, err := f.queries.ListPlayerWeapons(ctx, result.PlayerID)
	require.NoError(t, err)
	require.Len(t, weapons, 2)
	assert.Equal(t, "Thompson", weapons[0].WeaponName)
	assert.Equal(t, int64(6), weapons[0].Kills)
	assert.Equal(t, int64(100), weapons[0].ShotsFired)
	assert.Equal(t, int64(40), weapons[0].ShotsHit)
	assert.Equal(t, int64(2), weapons[1].Kills)
}

func TestApply_Map(t *testing.T) {
	f := newFixture(t, calc.DefaultWeights())
	ctx := context.Background()
	now := time.Now().UTC()

	f.apply(t, domain.TelemetryReport{Server: omaha(), Player: domain.PlayerDelta{Name: "Ace", Hash: "h1", Kills: 2, Wins: 1}}, now)
	f.apply(t, domain.TelemetryReport{Server: omaha(), Player: domain.PlayerDelta{Name: "Ace", Hash: "h1", Kills: 1, Losses: 1}}, now)
	f.apply(t, domain.TelemetryReport{Server: omaha(), Player: domain.PlayerDelta{Name: "Bee", Hash: "h2", Deaths: 3, Playtime: 60}}, now)

	m, err := f.queries.GetMapByName(ctx, "obj/obj_team2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), m.Kills)
	assert.Equal(t, int64(3), m.Deaths)
	assert.Equal(t, int64(1), m.Wins)
	assert.Equal(t, int64(1), m.Losses)
	assert.Equal(t, int64(60), m.PlayTime)
	assert.Equal(t, int64(2), m.UniquePlayers)

	t.Run("empty map name records no map", func(t *testing.T) {
		snapshot := omaha()
		snapshot.MapName = ""
		f.apply(t, domain.TelemetryReport{Server: snapshot, Player: domain.PlayerDelta{Name: "Ace", Hash: "h1"}}, now)

		n, err := f.queries.CountMaps(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestApply_NoServerNoWeapons(t *testing.T) {
	f := newFixture(t, calc.DefaultWeights())

	result := f.apply(t, domain.TelemetryReport{Player: domain.PlayerDelta{Name: "Ace", Hash: "h1"}}, time.Now().UTC())

	assert.Nil(t, result.ServerID)
	assert.Positive(t, result.PlayerID)
	assert.Zero(t, testutil.CountRows(t, f.sqlDB, "servers"))
	assert.Zero(t, testutil.CountRows(t, f.sqlDB, "weapons"))
	assert.Zero(t, testutil.CountRows(t, f.sqlDB, "maps"))
}

func TestApply_RatingUsesConfiguredWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights calc.Weights
		delta   domain.PlayerDelta
		want    int64
	}{
		{
			name:    "default formula",
			weights: calc.DefaultWeights(),
			delta:   domain.PlayerDelta{Kills: 10, Deaths: 4, Headshots: 3, Teamkills: 1},
			want:    10 - 4 + 6 - 5,
		},
		{
			name:    "never negative",
			weights: calc.DefaultWeights(),
			delta:   domain.PlayerDelta{Deaths: 9, Teamkills: 2},
			want:    0,
		},
		{
			name:    "custom weights",
			weights: calc.Weights{Kill: 3, Death: -2, Headshot: 1, Teamkill: -10},
			delta:   domain.PlayerDelta{Kills: 4, Deaths: 1, Headshots: 2},
			want:    12 - 2 + 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.weights)
			tt.delta.Name, tt.delta.Hash = "Ace", "h1"

			result := f.apply(t, domain.TelemetryReport{Player: tt.delta}, time.Now().UTC())

			p, err := f.queries.GetPlayerByID(context.Background(), result.PlayerID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Rating)
			assert.Equal(t, calc.KDRatio(p.Kills, p.Deaths), p.KdRatio)
		})
	}
}

func TestApply_ErrorLeavesRollbackToCaller(t *testing.T) {
	f := newFixture(t, calc.DefaultWeights())
	ctx := context.Background()

	_, err := f.sqlDB.Exec("DROP TABLE weapons")
	require.NoError(t, err)

	tx, err := f.sqlDB.BeginTx(ctx, nil)
	require.NoError(t, err)

	_, err = f.engine.Apply(ctx, f.queries.WithTx(tx), domain.TelemetryReport{
		Server:  omaha(),
		Player:  domain.PlayerDelta{Name: "Ace", Hash: "h1", Kills: 1},
		Weapons: []domain.WeaponDelta{{Name: "Thompson", Kills: 1}},
	}, time.Now().UTC())
	require.Error(t, err)
	require.NoError(t, tx.Rollback())

	assert.Zero(t, testutil.CountRows(t, f.sqlDB, "players"))
	assert.Zero(t, testutil.CountRows(t, f.sqlDB, "servers"))
}
