package db

import (
	"context"
)

const getRankForRating = `SELECT id, rank_name, min_rating, icon FROM ranks
WHERE min_rating <= ?
ORDER BY min_rating DESC
LIMIT 1`

func (q *Queries) GetRankForRating(ctx context.Context, rating int64) (Rank, error) {
	row := q.db.QueryRowContext(ctx, getRankForRating, rating)
	var i Rank
	err := row.Scan(
		&i.ID,
		&i.RankName,
		&i.MinRating,
		&i.Icon,
	)
	return i, err
}

const listRanks = `SELECT id, rank_name, min_rating, icon FROM ranks ORDER BY min_rating`

func (q *Queries) ListRanks(ctx context.Context) ([]Rank, error) {
	rows, err := q.db.QueryContext(ctx, listRanks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Rank
	for rows.Next() {
		var i Rank
		if err := rows.Scan(
			&i.ID,
			&i.RankName,
			&i.MinRating,
			&i.Icon,
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
