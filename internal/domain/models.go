package domain

import (
	"time"
)

type Player struct {
	ID           int64
	Hash         string
	Name         string
	Kills        int64
	Deaths       int64
	Suicides     int64
	Teamkills    int64
	Headshots    int64
	Score        int64
	Playtime     int64 // seconds
	RoundsPlayed int64
	Wins         int64
	Losses       int64
	KDRatio      float64
	Rating       int64
	Rank         *Rank // set on single-player lookups only
	FirstSeen    time.Time
	LastSeen     time.Time
}

type Rank struct {
	Name      string
	MinRating int64
	Icon      string
}

type Weapon struct {
	PlayerID   int64
	Name       string
	Kills      int64
	Deaths     int64
	ShotsFired int64
	ShotsHit   int64
	Headshots  int64
	Accuracy   float64 // derived on read
}

// WeaponTotal is one weapon summed over every player that used it.
type WeaponTotal struct {
	Name       string
	Users      int64
	Kills      int64
	Deaths     int64
	ShotsFired int64
	ShotsHit   int64
	Headshots  int64
	Accuracy   float64
}

type Map struct {
	ID            int64
	Name          string
	Kills         int64
	Deaths        int64
	Wins          int64
	Losses        int64
	PlayTime      int64
	TimesPlayed   int64 // wins + losses
	UniquePlayers int64
	FirstSeen     time.Time
	LastSeen      time.Time
}

type Server struct {
	ID             int64
	IP             string
	Port           int64
	Name           string
	MapName        string
	GameType       string
	MaxPlayers     int64
	CurrentPlayers int64
	RoundsPlayed   int64
	FirstSeen      time.Time
	LastSeen       time.Time
}

type Summary struct {
	Players    int64
	Servers    int64
	Maps       int64
	TotalKills int64
}
