// Package history implements the optional run history store of §4.15: one
// RunRecord persisted per invocation, queryable for a short trend report
// before the CLI exits.
package history

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"chalet/internal/accounting"
	"chalet/internal/apperror"
	"chalet/internal/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when a lookup finds no matching run record.
var ErrNotFound = errors.New("history: run record not found")

// Store persists and queries RunRecords in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, running pending migrations before returning.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apperror.Load("database", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperror.Load("database", err)
	}
	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return apperror.Load("database-migrations", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return apperror.Load("database-migrations", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Insert persists one RunRecord.
func (s *Store) Insert(ctx context.Context, r model.RunRecord) error {
	const query = `
		INSERT INTO run_records (
			run_id, started_at, finished_at, input_dir, output_dir,
			parameter_snapshot, objective_mode, objective_value,
			num_stations_built, num_pairs_covered, status, error_detail
		) VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.StartedAt, r.FinishedAt, r.InputDir, r.OutputDir,
		r.ParameterSnapshot, r.ObjectiveMode, r.ObjectiveValue,
		r.NumStationsBuilt, r.NumPairsCovered, r.Status, r.ErrorDetail,
	)
	if err != nil {
		return apperror.Load("database-insert", err)
	}
	return nil
}

// InsertStationUsage persists the per-station usage breakdown for one run,
// batched into a single round trip.
func (s *Store) InsertStationUsage(ctx context.Context, runID string, usage []accounting.StationUsage) error {
	if len(usage) == 0 {
		return nil
	}
	const query = `
		INSERT INTO run_station_usage (run_id, station_id, demand_served, charged_energy, visits)
		VALUES ($1, $2, $3, $4, $5)
	`
	batch := &pgx.Batch{}
	for _, u := range usage {
		batch.Queue(query, runID, u.StationID, u.DemandServed, u.ChargedEnergy, u.Visits)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range usage {
		if _, err := br.Exec(); err != nil {
			return apperror.Load("database-insert", err)
		}
	}
	return nil
}

// Recent returns the most recent n run records for the given input
// directory, newest first, used to print the CLI's run comparison table.
func (s *Store) Recent(ctx context.Context, inputDir string, n int) ([]model.RunRecord, error) {
	const query = `
		SELECT run_id, started_at, finished_at, input_dir, output_dir,
			parameter_snapshot, objective_mode, objective_value,
			num_stations_built, num_pairs_covered, status, error_detail
		FROM run_records
		WHERE input_dir = $1
		ORDER BY started_at DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, inputDir, n)
	if err != nil {
		return nil, apperror.Load("database-query", err)
	}
	defer rows.Close()

	var out []model.RunRecord
	for rows.Next() {
		var r model.RunRecord
		if err := rows.Scan(
			&r.RunID, &r.StartedAt, &r.FinishedAt, &r.InputDir, &r.OutputDir,
			&r.ParameterSnapshot, &r.ObjectiveMode, &r.ObjectiveValue,
			&r.NumStationsBuilt, &r.NumPairsCovered, &r.Status, &r.ErrorDetail,
		); err != nil {
			return nil, apperror.Load("database-scan", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Load("database-rows", err)
	}
	return out, nil
}

// Latest returns the single most recent record for inputDir, or
// ErrNotFound if none exist yet.
func (s *Store) Latest(ctx context.Context, inputDir string) (model.RunRecord, error) {
	const query = `
		SELECT run_id, started_at, finished_at, input_dir, output_dir,
			parameter_snapshot, objective_mode, objective_value,
			num_stations_built, num_pairs_covered, status, error_detail
		FROM run_records
		WHERE input_dir = $1
		ORDER BY started_at DESC
		LIMIT 1
	`
	var r model.RunRecord
	err := s.pool.QueryRow(ctx, query, inputDir).Scan(
		&r.RunID, &r.StartedAt, &r.FinishedAt, &r.InputDir, &r.OutputDir,
		&r.ParameterSnapshot, &r.ObjectiveMode, &r.ObjectiveValue,
		&r.NumStationsBuilt, &r.NumPairsCovered, &r.Status, &r.ErrorDetail,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RunRecord{}, ErrNotFound
	}
	if err != nil {
		return model.RunRecord{}, apperror.Load("database-query", err)
	}
	return r, nil
}

// FormatTrend renders a short textual comparison of recs (newest first),
// printed by the CLI before exit when -history is set.
func FormatTrend(recs []model.RunRecord) string {
	if len(recs) == 0 {
		return "history: no prior runs recorded for this input directory"
	}
	out := "history: recent runs (newest first)\n"
	for _, r := range recs {
		out += fmt.Sprintf("  %s  mode=%-10s objective=%-12.2f stations=%-4d covered=%-4d status=%s\n",
			r.StartedAt.Format("2006-01-02T15:04:05"), r.ObjectiveMode, r.ObjectiveValue,
			r.NumStationsBuilt, r.NumPairsCovered, r.Status)
	}
	return out
}
