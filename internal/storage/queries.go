package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// ActivityRow is one row of the activities table; Date is epoch milliseconds.
type ActivityRow struct {
	ID              int64
	Type            string
	Subtype         string
	Value           float64
	CarbonFootprint float64
	Date            int64
}

const activityColumns = `id, type, subtype, value, carbonFootprint, date`

const createActivity = `INSERT INTO activities (type, subtype, value, carbonFootprint, date)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

type CreateActivityParams struct {
	Type            string
	Subtype         string
	Value           float64
	CarbonFootprint float64
	Date            int64
}

func (q *Queries) CreateActivity(ctx context.Context, arg CreateActivityParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createActivity,
		arg.Type,
		arg.Subtype,
		arg.Value,
		arg.CarbonFootprint,
		arg.Date,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getActivity = `SELECT ` + activityColumns + ` FROM activities WHERE id = ?`

func (q *Queries) GetActivity(ctx context.Context, id int64) (ActivityRow, error) {
	row := q.db.QueryRowContext(ctx, getActivity, id)
	var i ActivityRow
	err := row.Scan(&i.ID, &i.Type, &i.Subtype, &i.Value, &i.CarbonFootprint, &i.Date)
	return i, err
}

const listActivitiesBetween = `SELECT ` + activityColumns + ` FROM activities
WHERE date >= ? AND date <= ?
ORDER BY date DESC, id DESC`

func (q *Queries) ListActivitiesBetween(ctx context.Context, from, to int64) ([]ActivityRow, error) {
	return q.listActivities(ctx, listActivitiesBetween, from, to)
}

const listActivitiesByType = `SELECT ` + activityColumns + ` FROM activities
WHERE type = ?
ORDER BY date DESC, id DESC`

func (q *Queries) ListActivitiesByType(ctx context.Context, activityType string) ([]ActivityRow, error) {
	return q.listActivities(ctx, listActivitiesByType, activityType)
}

func (q *Queries) listActivities(ctx context.Context, query string, args ...interface{}) ([]ActivityRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ActivityRow{}
	for rows.Next() {
		var i ActivityRow
		if err := rows.Scan(&i.ID, &i.Type, &i.Subtype, &i.Value, &i.CarbonFootprint, &i.Date); err != nil {
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

const updateActivity = `UPDATE activities
SET type = ?, subtype = ?, value = ?, carbonFootprint = ?, date = ?
WHERE id = ?`

type UpdateActivityParams struct {
	ID              int64
	Type            string
	Subtype         string
	Value           float64
	CarbonFootprint float64
	Date            int64
}

func (q *Queries) UpdateActivity(ctx context.Context, arg UpdateActivityParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateActivity,
		arg.Type,
		arg.Subtype,
		arg.Value,
		arg.CarbonFootprint,
		arg.Date,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteActivity = `DELETE FROM activities WHERE id = ?`

func (q *Queries) DeleteActivity(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteActivity, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAllActivities = `DELETE FROM activities`

func (q *Queries) DeleteAllActivities(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllActivities)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const sumFootprintBetween = `SELECT COALESCE(SUM(carbonFootprint), 0.0) FROM activities
WHERE date >= ? AND date <= ?`

func (q *Queries) SumFootprintBetween(ctx context.Context, from, to int64) (float64, error) {
	row := q.db.QueryRowContext(ctx, sumFootprintBetween, from, to)
	var total float64
	err := row.Scan(&total)
	return total, err
}

const sumFootprintByTypeBetween = `SELECT type, SUM(carbonFootprint) AS total
FROM activities
WHERE date >= ? AND date <= ?
GROUP BY type`

type TypeSum struct {
	Type  string
	Total float64
}

func (q *Queries) SumFootprintByTypeBetween(ctx context.Context, from, to int64) ([]TypeSum, error) {
	rows, err := q.db.QueryContext(ctx, sumFootprintByTypeBetween, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TypeSum
	for rows.Next() {
		var i TypeSum
		if err := rows.Scan(&i.Type, &i.Total); err != nil {
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

const footprintPointsBetween = `SELECT date, carbonFootprint FROM activities
WHERE date >= ? AND date <= ?`

type FootprintPointRow struct {
	Date            int64
	CarbonFootprint float64
}

func (q *Queries) FootprintPointsBetween(ctx context.Context, from, to int64) ([]FootprintPointRow, error) {
	rows, err := q.db.QueryContext(ctx, footprintPointsBetween, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FootprintPointRow
	for rows.Next() {
		var i FootprintPointRow
		if err := rows.Scan(&i.Date, &i.CarbonFootprint); err != nil {
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
