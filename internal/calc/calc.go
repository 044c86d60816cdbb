// Package calc holds the derived-metric formulas shared by the aggregation
// engine and the read-side queries. Everything here is a pure function of
// cumulative counters.
package calc

import "math"

// Weights are the per-counter points used by Rating.
type Weights struct {
	Kill     int64
	Death    int64
	Headshot int64
	Teamkill int64
}

func DefaultWeights() Weights {
	return Weights{Kill: 1, Death: -1, Headshot: 2, Teamkill: -5}
}

// RatingInput is the subset of player counters the rating depends on.
type RatingInput struct {
	Kills     int64
	Deaths    int64
	Headshots int64
	Teamkills int64
}

// Rating is never negative. Terms saturate at the int64 bounds instead of
// wrapping, so huge counters pin the rating at MaxInt64 or zero.
func Rating(in RatingInput, w Weights) int64 {
	rating := satAdd(
		satAdd(satMul(in.Kills, w.Kill), satMul(in.Deaths, w.Death)),
		satAdd(satMul(in.Headshots, w.Headshot), satMul(in.Teamkills, w.Teamkill)),
	)
	return max(0, rating)
}

func satMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	p := a * b
	if p/b == a && !(a == -1 && b == math.MinInt64) && !(b == -1 && a == math.MinInt64) {
		return p
	}
	if (a > 0) == (b > 0) {
		return math.MaxInt64
	}
	return math.MinInt64
}

func satAdd(a, b int64) int64 {
	s := a + b
	switch {
	case a > 0 && b > 0 && s < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && s >= 0:
		return math.MinInt64
	}
	return s
}

// KDRatio returns kills when there are no deaths.
func KDRatio(kills, deaths int64) float64 {
	if deaths == 0 {
		return Round2(float64(kills))
	}
	return Round2(float64(kills) / float64(deaths))
}

// Accuracy is a percentage of shots that hit.
func Accuracy(hits, shots int64) float64 {
	if shots == 0 {
		return 0
	}
	return Round2(float64(hits) / float64(shots) * 100)
}

func WinRate(wins, losses int64) float64 {
	games := wins + losses
	if games == 0 {
		return 0
	}
	return Round2(float64(wins) / float64(games) * 100)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
