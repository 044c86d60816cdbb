package db

import (
	"context"
	"database/sql"
	"time"
)

const serverColumns = `id, server_ip, server_port, server_name, server_token, map_name, game_type,
    max_players, current_players, rounds_played, first_seen, last_seen`

func scanServer(row rowScanner) (Server, error) {
	var i Server
	err := row.Scan(
		&i.ID,
		&i.ServerIp,
		&i.ServerPort,
		&i.ServerName,
		&i.ServerToken,
		&i.MapName,
		&i.GameType,
		&i.MaxPlayers,
		&i.CurrentPlayers,
		&i.RoundsPlayed,
		&i.FirstSeen,
		&i.LastSeen,
	)
	return i, err
}

const getServerIDByEndpoint = `SELECT id FROM servers WHERE server_ip = ? AND server_port = ?`

type GetServerIDByEndpointParams struct {
	ServerIp   string
	ServerPort int64
}

func (q *Queries) GetServerIDByEndpoint(ctx context.Context, arg GetServerIDByEndpointParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, getServerIDByEndpoint, arg.ServerIp, arg.ServerPort)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const insertServer = `INSERT INTO servers (server_ip, server_port, server_name, first_seen, last_seen)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

type InsertServerParams struct {
	ServerIp   string
	ServerPort int64
	ServerName string
	FirstSeen  time.Time
	LastSeen   time.Time
}

func (q *Queries) InsertServer(ctx context.Context, arg InsertServerParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, insertServer,
		arg.ServerIp,
		arg.ServerPort,
		arg.ServerName,
		arg.FirstSeen,
		arg.LastSeen,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const applyServerSnapshot = `UPDATE servers SET
    server_name     = ?,
    map_name        = ?,
    game_type       = ?,
    max_players     = ?,
    current_players = ?,
    rounds_played   = rounds_played + ?,
    last_seen       = ?
WHERE id = ?`

type ApplyServerSnapshotParams struct {
	ServerName     string
	MapName        string
	GameType       string
	MaxPlayers     int64
	CurrentPlayers int64
	RoundsPlayed   int64
	LastSeen       time.Time
	ID             int64
}

func (q *Queries) ApplyServerSnapshot(ctx context.Context, arg ApplyServerSnapshotParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, applyServerSnapshot,
		arg.ServerName,
		arg.MapName,
		arg.GameType,
		arg.MaxPlayers,
		arg.CurrentPlayers,
		arg.RoundsPlayed,
		arg.LastSeen,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setServerToken = `UPDATE servers SET server_token = ? WHERE id = ?`

type SetServerTokenParams struct {
	ServerToken sql.NullString
	ID          int64
}

func (q *Queries) SetServerToken(ctx context.Context, arg SetServerTokenParams) error {
	_, err := q.db.ExecContext(ctx, setServerToken, arg.ServerToken, arg.ID)
	return err
}

const getServerByToken = `SELECT ` + serverColumns + ` FROM servers WHERE server_token = ?`

func (q *Queries) GetServerByToken(ctx context.Context, serverToken string) (Server, error) {
	return scanServer(q.db.QueryRowContext(ctx, getServerByToken, serverToken))
}

const getServerByID = `SELECT ` + serverColumns + ` FROM servers WHERE id = ?`

func (q *Queries) GetServerByID(ctx context.Context, id int64) (Server, error) {
	return scanServer(q.db.QueryRowContext(ctx, getServerByID, id))
}

const listServers = `SELECT ` + serverColumns + ` FROM servers ORDER BY last_seen DESC, id ASC`

func (q *Queries) ListServers(ctx context.Context) ([]Server, error) {
	rows, err := q.db.QueryContext(ctx, listServers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Server
	for rows.Next() {
		i, err := scanServer(rows)
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

const countServers = `SELECT COUNT(*) FROM servers`

func (q *Queries) CountServers(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countServers)
	var count int64
	err := row.Scan(&count)
	return count, err
}
