package domain

// TelemetryReport is one round reported by one game server for one player.
// Counter fields are deltas to add; names, map, game type and player counts
// replace whatever is stored.
type TelemetryReport struct {
	Server  *ServerSnapshot
	Player  PlayerDelta
	Weapons []WeaponDelta
}

type ServerSnapshot struct {
	Name           string
	IP             string
	Port           int64
	MapName        string
	GameType       string
	MaxPlayers     int64
	CurrentPlayers int64
}

type PlayerDelta struct {
	Name      string
	Hash      string
	Kills     int64
	Deaths    int64
	Suicides  int64
	Teamkills int64
	Headshots int64
	Score     int64
	Playtime  int64
	Rounds    int64
	Wins      int64
	Losses    int64
}

type WeaponDelta struct {
	Name       string
	Kills      int64
	Deaths     int64
	ShotsFired int64
	ShotsHit   int64
	Headshots  int64
}

type AggregationResult struct {
	PlayerID      int64
	ServerID      *int64
	PlayerCreated bool
	ServerCreated bool
}
