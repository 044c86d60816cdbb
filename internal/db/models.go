package db

import (
	"database/sql"
	"time"
)

type Player struct {
	ID           int64
	PlayerHash   string
	PlayerName   string
	Kills        int64
	Deaths       int64
	Suicides     int64
	Teamkills    int64
	Headshots    int64
	Score        int64
	Playtime     int64
	RoundsPlayed int64
	Wins         int64
	Losses       int64
	KdRatio      float64
	Rating       int64
	FirstSeen    time.Time
	LastSeen     time.Time
}

type Server struct {
	ID             int64
	ServerIp       string
	ServerPort     int64
	ServerName     string
	ServerToken    sql.NullString
	MapName        string
	GameType       string
	MaxPlayers     int64
	CurrentPlayers int64
	RoundsPlayed   int64
	FirstSeen      time.Time
	LastSeen       time.Time
}

type Weapon struct {
	ID         int64
	PlayerID   int64
	WeaponName string
	Kills      int64
	Deaths     int64
	ShotsFired int64
	ShotsHit   int64
	Headshots  int64
}

type MapStat struct {
	ID            int64
	MapName       string
	Kills         int64
	Deaths        int64
	Wins          int64
	Losses        int64
	PlayTime      int64
	UniquePlayers int64
	FirstSeen     time.Time
	LastSeen      time.Time
}

type WeaponTotal struct {
	WeaponName string
	Users      int64
	Kills      int64
	Deaths     int64
	ShotsFired int64
	ShotsHit   int64
	Headshots  int64
}

type Rank struct {
	ID        int64
	RankName  string
	MinRating int64
	Icon      string
}
