package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"footprint/internal/core"
	"footprint/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the on-disk ActivityStore. Timestamps are stored as
// epoch milliseconds; per-day grouping happens in Go using loc so that it
// agrees with the period boundaries callers compute.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	loc     *time.Location
	logger  *log.Logger
}

var _ ActivityStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string, loc *time.Location, logger *log.Logger) (*SQLiteRepository, error) {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentStorage)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one mutator at a time
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("SQLite activity store ready",
		"db_path", dbPath,
		"schema_version", version,
		"location", loc.String())

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		loc:     loc,
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) fail(ctx context.Context, op string, err error) error {
	r.logger.ErrorContext(ctx, "Activity store operation failed",
		log.NewFields().WithOperation(op).WithErrorType(log.ErrorTypeDatabase).WithError(err).ToSlice()...)
	return &core.StoreError{Op: op, Err: err}
}

func (r *SQLiteRepository) Create(ctx context.Context, a core.Activity) (int64, error) {
	id, err := r.queries.CreateActivity(ctx, CreateActivityParams{
		Type:            a.Category,
		Subtype:         a.Subtype,
		Value:           a.Quantity,
		CarbonFootprint: a.Footprint,
		Date:            a.OccurredAt.UnixMilli(),
	})
	if err != nil {
		return 0, r.fail(ctx, "create", err)
	}

	r.logger.DebugContext(ctx, "Activity saved to SQLite",
		log.FieldActivityID, id,
		log.FieldCategory, a.Category,
		log.FieldSubtype, a.Subtype,
		log.FieldFootprintKg, a.Footprint,
		log.FieldOccurredAt, a.OccurredAt.UnixMilli())

	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*core.Activity, error) {
	row, err := r.queries.GetActivity(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, r.fail(ctx, "get", err)
	}
	a := r.toActivity(row)
	return &a, nil
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Activity, error) {
	lo, hi := All().millis()
	rows, err := r.queries.ListActivitiesBetween(ctx, lo, hi)
	if err != nil {
		return nil, r.fail(ctx, "list", err)
	}
	return r.toActivities(rows), nil
}

func (r *SQLiteRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]core.Activity, error) {
	rows, err := r.queries.ListActivitiesBetween(ctx, start.UnixMilli(), end.UnixMilli())
	if err != nil {
		return nil, r.fail(ctx, "list by date range", err)
	}
	return r.toActivities(rows), nil
}

func (r *SQLiteRepository) ListByCategory(ctx context.Context, category string) ([]core.Activity, error) {
	rows, err := r.queries.ListActivitiesByType(ctx, category)
	if err != nil {
		return nil, r.fail(ctx, "list by category", err)
	}
	return r.toActivities(rows), nil
}

func (r *SQLiteRepository) Update(ctx context.Context, a core.Activity) (int64, error) {
	n, err := r.queries.UpdateActivity(ctx, UpdateActivityParams{
		ID:              a.ID,
		Type:            a.Category,
		Subtype:         a.Subtype,
		Value:           a.Quantity,
		CarbonFootprint: a.Footprint,
		Date:            a.OccurredAt.UnixMilli(),
	})
	if err != nil {
		return 0, r.fail(ctx, "update", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	n, err := r.queries.DeleteActivity(ctx, id)
	if err != nil {
		return 0, r.fail(ctx, "delete", err)
	}
	return n, nil
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) (int64, error) {
	n, err := r.queries.DeleteAllActivities(ctx)
	if err != nil {
		return 0, r.fail(ctx, "delete all", err)
	}
	r.logger.InfoContext(ctx, "All activities deleted", log.FieldAffected, n)
	return n, nil
}

func (r *SQLiteRepository) SumFootprint(ctx context.Context, rng Range) (float64, error) {
	lo, hi := rng.millis()
	total, err := r.queries.SumFootprintBetween(ctx, lo, hi)
	if err != nil {
		return 0, r.fail(ctx, "sum footprint", err)
	}
	return total, nil
}

func (r *SQLiteRepository) SumFootprintByCategory(ctx context.Context, rng Range) (map[string]float64, error) {
	lo, hi := rng.millis()
	sums, err := r.queries.SumFootprintByTypeBetween(ctx, lo, hi)
	if err != nil {
		return nil, r.fail(ctx, "sum footprint by category", err)
	}
	out := make(map[string]float64, len(sums))
	for _, s := range sums {
		out[s.Type] = s.Total
	}
	return out, nil
}

func (r *SQLiteRepository) DailyFootprint(ctx context.Context, rng Range) (map[core.Day]float64, error) {
	lo, hi := rng.millis()
	rows, err := r.queries.FootprintPointsBetween(ctx, lo, hi)
	if err != nil {
		return nil, r.fail(ctx, "daily footprint", err)
	}
	points := make([]Point, len(rows))
	for i, row := range rows {
		points[i] = Point{At: time.UnixMilli(row.Date), Footprint: row.CarbonFootprint}
	}
	return GroupByDay(points, r.loc), nil
}

func (r *SQLiteRepository) toActivity(row ActivityRow) core.Activity {
	return core.Activity{
		ID:         row.ID,
		Category:   row.Type,
		Subtype:    row.Subtype,
		Quantity:   row.Value,
		Footprint:  row.CarbonFootprint,
		OccurredAt: time.UnixMilli(row.Date).In(r.loc),
	}
}

func (r *SQLiteRepository) toActivities(rows []ActivityRow) []core.Activity {
	out := make([]core.Activity, len(rows))
	for i, row := range rows {
		out[i] = r.toActivity(row)
	}
	return out
}
