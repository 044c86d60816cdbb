package db

import (
	"context"
)

const addWeaponDeltas = `INSERT INTO weapons (player_id, weapon_name, kills, deaths, shots_fired, shots_hit, headshots)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (player_id, weapon_name) DO UPDATE SET
    kills       = kills + excluded.kills,
    deaths      = deaths + excluded.deaths,
    shots_fired = shots_fired + excluded.shots_fired,
    shots_hit   = shots_hit + excluded.shots_hit,
    headshots   = headshots + excluded.headshots`

type AddWeaponDeltasParams struct {
	PlayerID   int64
	WeaponName string
	Kills      int64
	Deaths     int64
	ShotsFired int64
	ShotsHit   int64
	Headshots  int64
}

func (q *Queries) AddWeaponDeltas(ctx context.Context, arg AddWeaponDeltasParams) error {
	_, err := q.db.ExecContext(ctx, addWeaponDeltas,
		arg.PlayerID,
		arg.WeaponName,
		arg.Kills,
		arg.Deaths,
		arg.ShotsFired,
		arg.ShotsHit,
		arg.Headshots,
	)
	return err
}

const listPlayerWeapons = `SELECT id, player_id, weapon_name, kills, deaths, shots_fired, shots_hit, headshots
FROM weapons
WHERE player_id = ?
ORDER BY kills DESC, weapon_name ASC`

func (q *Queries) ListPlayerWeapons(ctx context.Context, playerID int64) ([]Weapon, error) {
	rows, err := q.db.QueryContext(ctx, listPlayerWeapons, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Weapon
	for rows.Next() {
		var i Weapon
		if err := rows.Scan(
			&i.ID,
			&i.PlayerID,
			&i.WeaponName,
			&i.Kills,
			&i.Deaths,
			&i.ShotsFired,
			&i.ShotsHit,
			&i.Headshots,
		); err != nil {
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

const listWeaponTotals = `SELECT weapon_name,
    COUNT(*)         AS users,
    SUM(kills)       AS kills,
    SUM(deaths)      AS deaths,
    SUM(shots_fired) AS shots_fired,
    SUM(shots_hit)   AS shots_hit,
    SUM(headshots)   AS headshots
FROM weapons
GROUP BY weapon_name
ORDER BY kills DESC, weapon_name ASC
LIMIT ?`

func (q *Queries) ListWeaponTotals(ctx context.Context, limit int64) ([]WeaponTotal, error) {
	rows, err := q.db.QueryContext(ctx, listWeaponTotals, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []WeaponTotal
	for rows.Next() {
		var i WeaponTotal
		if err := rows.Scan(
			&i.WeaponName,
			&i.Users,
			&i.Kills,
			&i.Deaths,
			&i.ShotsFired,
			&i.ShotsHit,
			&i.Headshots,
		); err != nil {
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
