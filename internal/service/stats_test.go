package service_test

import (
	"context"
	"testing"

	"chronos-stats/internal/domain"
	"chronos-stats/internal/monitoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_NotFound(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.stats.Player(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.stats.PlayerWeapons(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.stats.Server(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.stats.Map(ctx, "dm/none")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatsService_EmptySummary(t *testing.T) {
	s := newStack(t)

	summary, err := s.stats.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{}, *summary)
}

func TestStatsService_Limits(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	for _, name := range []string{"Ace", "Bee", "Cat"} {
		r := aceReport(name)
		r.Player.Hash = name
		_, err := s.ingest.Ingest(ctx, monitoring.TransportJSON, r)
		require.NoError(t, err)
	}

	all, err := s.stats.TopPlayers(ctx, 0, -5)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	two, err := s.stats.TopPlayers(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	found, err := s.stats.SearchPlayers(ctx, "be")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Bee", found[0].Name)

	totals, err := s.stats.WeaponTotals(ctx, 0)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, int64(3), totals[0].Users)

	maps, err := s.stats.PopularMaps(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, maps, 1)
}

func TestStatsService_PlayerRank(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	result, err := s.ingest.Ingest(ctx, monitoring.TransportJSON, aceReport("Ace"))
	require.NoError(t, err)

	p, err := s.stats.Player(ctx, result.PlayerID)
	require.NoError(t, err)
	require.NotNil(t, p.Rank)
	assert.Equal(t, "Recruit", p.Rank.Name)

	veteran := aceReport("Ace")
	veteran.Player.Kills = 60
	_, err = s.ingest.Ingest(ctx, monitoring.TransportJSON, veteran)
	require.NoError(t, err)

	p, err = s.stats.PlayerByHash(ctx, "ace-hash")
	require.NoError(t, err)
	require.NotNil(t, p.Rank)
	assert.Equal(t, int64(63), p.Rating)
	assert.Equal(t, "Private", p.Rank.Name)

	top, err := s.stats.TopPlayers(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Nil(t, top[0].Rank)

	ranks, err := s.stats.Ranks(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, ranks)
}
