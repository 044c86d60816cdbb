package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKDRatio(t *testing.T) {
	tests := []struct {
		name   string
		kills  int64
		deaths int64
		want   float64
	}{
		{name: "no deaths returns kills", kills: 10, deaths: 0, want: 10.00},
		{name: "even division", kills: 9, deaths: 3, want: 3.00},
		{name: "nothing recorded", kills: 0, deaths: 0, want: 0.00},
		{name: "rounded to two places", kills: 10, deaths: 3, want: 3.33},
		{name: "rounds up", kills: 2, deaths: 3, want: 0.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KDRatio(tt.kills, tt.deaths))
		})
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		hits  int64
		shots int64
		want  float64
	}{
		{name: "forty percent", hits: 40, shots: 100, want: 40.00},
		{name: "no shots", hits: 0, shots: 0, want: 0.00},
		{name: "repeating fraction", hits: 1, shots: 3, want: 33.33},
		{name: "perfect", hits: 7, shots: 7, want: 100.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accuracy(tt.hits, tt.shots))
		})
	}
}

func TestRating(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name string
		in   RatingInput
		want int64
	}{
		{name: "empty", in: RatingInput{}, want: 0},
		{name: "kills minus deaths", in: RatingInput{Kills: 10, Deaths: 4}, want: 6},
		{name: "headshot bonus", in: RatingInput{Kills: 10, Deaths: 4, Headshots: 3}, want: 12},
		{name: "teamkill penalty", in: RatingInput{Kills: 10, Deaths: 4, Headshots: 3, Teamkills: 2}, want: 2},
		{name: "clamped at zero", in: RatingInput{Kills: 1, Deaths: 20}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rating(tt.in, w))
		})
	}
}

func TestRatingMatchesDefaultFormula(t *testing.T) {
	w := DefaultWeights()
	for kills := int64(0); kills < 12; kills++ {
		for deaths := int64(0); deaths < 12; deaths += 3 {
			for hs := int64(0); hs <= kills; hs += 4 {
				for tk := int64(0); tk < 3; tk++ {
					want := max(0, kills-deaths+2*hs-5*tk)
					got := Rating(RatingInput{Kills: kills, Deaths: deaths, Headshots: hs, Teamkills: tk}, w)
					assert.Equal(t, want, got)
				}
			}
		}
	}
}

func TestRatingSaturates(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name string
		in   RatingInput
		want int64
	}{
		{name: "headshot bonus overflows", in: RatingInput{Headshots: 5000000000000000000}, want: math.MaxInt64},
		{name: "kills at max", in: RatingInput{Kills: math.MaxInt64, Headshots: 1}, want: math.MaxInt64},
		{name: "huge deaths", in: RatingInput{Kills: 10, Deaths: math.MaxInt64}, want: 0},
		{name: "huge teamkills", in: RatingInput{Kills: math.MaxInt64, Teamkills: math.MaxInt64}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rating(tt.in, w))
		})
	}
}

func TestRatingCustomWeights(t *testing.T) {
	w := Weights{Kill: 3, Death: 0, Headshot: 1, Teamkill: -10}
	assert.Equal(t, int64(31), Rating(RatingInput{Kills: 10, Deaths: 50, Headshots: 1}, w))
}

func TestWinRate(t *testing.T) {
	assert.Equal(t, 0.0, WinRate(0, 0))
	assert.Equal(t, 50.0, WinRate(2, 2))
	assert.Equal(t, 66.67, WinRate(2, 1))
}
