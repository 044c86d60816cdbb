package db

import (
	"context"
	"time"
)

const playerColumns = `id, player_hash, player_name, kills, deaths, suicides, teamkills, headshots,
    score, playtime, rounds_played, wins, losses, kd_ratio, rating, first_seen, last_seen`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (Player, error) {
	var i Player
	err := row.Scan(
		&i.ID,
		&i.PlayerHash,
		&i.PlayerName,
		&i.Kills,
		&i.Deaths,
		&i.Suicides,
		&i.Teamkills,
		&i.Headshots,
		&i.Score,
		&i.Playtime,
		&i.RoundsPlayed,
		&i.Wins,
		&i.Losses,
		&i.KdRatio,
		&i.Rating,
		&i.FirstSeen,
		&i.LastSeen,
	)
	return i, err
}

const getPlayerIDByHash = `SELECT id FROM players WHERE player_hash = ?`

func (q *Queries) GetPlayerIDByHash(ctx context.Context, playerHash string) (int64, error) {
	row := q.db.QueryRowContext(ctx, getPlayerIDByHash, playerHash)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const insertPlayer = `INSERT INTO players (player_hash, player_name, first_seen, last_seen)
VALUES (?, ?, ?, ?)
RETURNING id`

type InsertPlayerParams struct {
	PlayerHash string
	PlayerName string
	FirstSeen  time.Time
	LastSeen   time.Time
}

func (q *Queries) InsertPlayer(ctx context.Context, arg InsertPlayerParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, insertPlayer,
		arg.PlayerHash,
		arg.PlayerName,
		arg.FirstSeen,
		arg.LastSeen,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const addPlayerDeltas = `UPDATE players SET
    player_name   = ?,
    kills         = kills + ?,
    deaths        = deaths + ?,
    suicides      = suicides + ?,
    teamkills     = teamkills + ?,
    headshots     = headshots + ?,
    score         = score + ?,
    playtime      = playtime + ?,
    rounds_played = rounds_played + ?,
    wins          = wins + ?,
    losses        = losses + ?,
    last_seen     = ?
WHERE id = ?`

type AddPlayerDeltasParams struct {
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
	LastSeen     time.Time
	ID           int64
}

func (q *Queries) AddPlayerDeltas(ctx context.Context, arg AddPlayerDeltasParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, addPlayerDeltas,
		arg.PlayerName,
		arg.Kills,
		arg.Deaths,
		arg.Suicides,
		arg.Teamkills,
		arg.Headshots,
		arg.Score,
		arg.Playtime,
		arg.RoundsPlayed,
		arg.Wins,
		arg.Losses,
		arg.LastSeen,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const updatePlayerDerived = `UPDATE players SET kd_ratio = ?, rating = ? WHERE id = ?`

type UpdatePlayerDerivedParams struct {
	KdRatio float64
	Rating  int64
	ID      int64
}

func (q *Queries) UpdatePlayerDerived(ctx context.Context, arg UpdatePlayerDerivedParams) error {
	_, err := q.db.ExecContext(ctx, updatePlayerDerived, arg.KdRatio, arg.Rating, arg.ID)
	return err
}

const getPlayerByID = `SELECT ` + playerColumns + ` FROM players WHERE id = ?`

func (q *Queries) GetPlayerByID(ctx context.Context, id int64) (Player, error) {
	return scanPlayer(q.db.QueryRowContext(ctx, getPlayerByID, id))
}

const getPlayerByHash = `SELECT ` + playerColumns + ` FROM players WHERE player_hash = ?`

func (q *Queries) GetPlayerByHash(ctx context.Context, playerHash string) (Player, error) {
	return scanPlayer(q.db.QueryRowContext(ctx, getPlayerByHash, playerHash))
}

const listTopPlayers = `SELECT ` + playerColumns + ` FROM players
ORDER BY rating DESC, kills DESC, id ASC
LIMIT ? OFFSET ?`

type ListTopPlayersParams struct {
	Limit  int64
	Offset int64
}

func (q *Queries) ListTopPlayers(ctx context.Context, arg ListTopPlayersParams) ([]Player, error) {
	return q.listPlayers(ctx, listTopPlayers, arg.Limit, arg.Offset)
}

const searchPlayers = `SELECT ` + playerColumns + ` FROM players
WHERE player_name LIKE ? ESCAPE '\'
ORDER BY score DESC, id ASC
LIMIT ?`

type SearchPlayersParams struct {
	Name  string
	Limit int64
}

func (q *Queries) SearchPlayers(ctx context.Context, arg SearchPlayersParams) ([]Player, error) {
	return q.listPlayers(ctx, searchPlayers, arg.Name, arg.Limit)
}

func (q *Queries) listPlayers(ctx context.Context, query string, args ...interface{}) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		i, err := scanPlayer(rows)
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

const countPlayers = `SELECT COUNT(*) FROM players`

func (q *Queries) CountPlayers(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPlayers)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const sumPlayerKills = `SELECT COALESCE(SUM(kills), 0) FROM players`

func (q *Queries) SumPlayerKills(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumPlayerKills)
	var total int64
	err := row.Scan(&total)
	return total, err
}
