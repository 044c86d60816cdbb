package db

import (
	"context"
	"time"
)

const ensureMap = `INSERT INTO maps (map_name, first_seen, last_seen)
VALUES (?, ?, ?)
ON CONFLICT (map_name) DO NOTHING`

type EnsureMapParams struct {
	MapName   string
	FirstSeen time.Time
	LastSeen  time.Time
}

func (q *Queries) EnsureMap(ctx context.Context, arg EnsureMapParams) error {
	_, err := q.db.ExecContext(ctx, ensureMap, arg.MapName, arg.FirstSeen, arg.LastSeen)
	return err
}

const addMapDeltas = `UPDATE maps SET
    kills     = kills + ?,
    deaths    = deaths + ?,
    wins      = wins + ?,
    losses    = losses + ?,
    play_time = play_time + ?,
    last_seen = ?
WHERE map_name = ?
RETURNING id`

type AddMapDeltasParams struct {
	Kills    int64
	Deaths   int64
	Wins     int64
	Losses   int64
	PlayTime int64
	LastSeen time.Time
	MapName  string
}

func (q *Queries) AddMapDeltas(ctx context.Context, arg AddMapDeltasParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, addMapDeltas,
		arg.Kills,
		arg.Deaths,
		arg.Wins,
		arg.Losses,
		arg.PlayTime,
		arg.LastSeen,
		arg.MapName,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const addMapPlayer = `INSERT INTO map_players (map_id, player_id) VALUES (?, ?)
ON CONFLICT (map_id, player_id) DO NOTHING`

type AddMapPlayerParams struct {
	MapID    int64
	PlayerID int64
}

func (q *Queries) AddMapPlayer(ctx context.Context, arg AddMapPlayerParams) error {
	_, err := q.db.ExecContext(ctx, addMapPlayer, arg.MapID, arg.PlayerID)
	return err
}

const mapStatColumns = `m.id, m.map_name, m.kills, m.deaths, m.wins, m.losses, m.play_time,
    (SELECT COUNT(*) FROM map_players mp WHERE mp.map_id = m.id) AS unique_players,
    m.first_seen, m.last_seen`

func scanMapStat(row rowScanner) (MapStat, error) {
	var i MapStat
	err := row.Scan(
		&i.ID,
		&i.MapName,
		&i.Kills,
		&i.Deaths,
		&i.Wins,
		&i.Losses,
		&i.PlayTime,
		&i.UniquePlayers,
		&i.FirstSeen,
		&i.LastSeen,
	)
	return i, err
}

const getMapByName = `SELECT ` + mapStatColumns + ` FROM maps m WHERE m.map_name = ?`

func (q *Queries) GetMapByName(ctx context.Context, mapName string) (MapStat, error) {
	return scanMapStat(q.db.QueryRowContext(ctx, getMapByName, mapName))
}

const listPopularMaps = `SELECT ` + mapStatColumns + ` FROM maps m
ORDER BY (m.wins + m.losses) DESC, m.kills DESC, m.map_name ASC
LIMIT ?`

func (q *Queries) ListPopularMaps(ctx context.Context, limit int64) ([]MapStat, error) {
	rows, err := q.db.QueryContext(ctx, listPopularMaps, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MapStat
	for rows.Next() {
		i, err := scanMapStat(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countMaps = `SELECT COUNT(*) FROM maps`

func (q *Queries) CountMaps(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countMaps)
	var count int64
	err := row.Scan(&count)
	return count, err
}
