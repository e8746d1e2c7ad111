package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brdocs/docket/internal/domain"
	"github.com/brdocs/docket/internal/ports"
)

const defaultRecentLimit = 20

type Store struct {
	db *sql.DB
}

var _ ports.HistoryRepository = (*Store)(nil)

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveBatch(ctx context.Context, report domain.BatchReport, reportPath string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (
			id, queue, context, document_type, destination,
			started_at, finished_at,
			submitted, direct, deferred, downloaded, not_found, rejected, fetch_failed,
			report_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.BatchID, report.Queue, report.Context, string(report.DocumentType), report.Destination,
		report.StartedAt.UTC(), report.FinishedAt.UTC(),
		report.Counts.Submitted, report.Counts.Direct, report.Counts.Deferred,
		report.Counts.Downloaded, report.Counts.NotFound, report.Counts.Rejected, report.Counts.FetchFailed,
		reportPath,
	)
	if err != nil {
		return fmt.Errorf("insert batch %s: %w", report.BatchID, err)
	}

	for _, res := range report.Results {
		updatedAt := res.ResolvedAt
		if updatedAt.IsZero() {
			updatedAt = report.FinishedAt
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO case_outcomes (
				batch_id, case_number, state, kind, pickup_handle,
				artifact_path, reason, attempt, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.BatchID, res.Case.Number, string(res.State), string(res.Kind), res.PickupHandle,
			res.ArtifactPath, res.Reason, res.Attempt, updatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert outcome for case %s: %w", res.Case.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history transaction: %w", err)
	}

	return nil
}

func (s *Store) RecentBatches(ctx context.Context, limit int) ([]domain.BatchSummary, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, queue, context, started_at, finished_at,
			submitted, direct, deferred, downloaded, not_found, rejected, fetch_failed,
			report_path
		 FROM batches ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent batches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []domain.BatchSummary
	for rows.Next() {
		var (
			summary    domain.BatchSummary
			startedAt  time.Time
			finishedAt time.Time
		)
		err := rows.Scan(
			&summary.BatchID, &summary.Queue, &summary.Context, &startedAt, &finishedAt,
			&summary.Counts.Submitted, &summary.Counts.Direct, &summary.Counts.Deferred,
			&summary.Counts.Downloaded, &summary.Counts.NotFound, &summary.Counts.Rejected,
			&summary.Counts.FetchFailed, &summary.ReportPath,
		)
		if err != nil {
			return nil, fmt.Errorf("scan batch row: %w", err)
		}

		summary.StartedAt = startedAt.UTC()
		summary.FinishedAt = finishedAt.UTC()
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch rows: %w", err)
	}

	return summaries, nil
}

func (s *Store) CaseOutcomes(ctx context.Context, caseNumber string) ([]domain.CaseHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT batch_id, case_number, state, artifact_path, attempt, updated_at
		 FROM case_outcomes WHERE case_number = ? ORDER BY updated_at DESC`, caseNumber)
	if err != nil {
		return nil, fmt.Errorf("list outcomes for case %s: %w", caseNumber, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.CaseHistoryEntry
	for rows.Next() {
		var (
			entry     domain.CaseHistoryEntry
			state     string
			updatedAt time.Time
		)
		if err := rows.Scan(&entry.BatchID, &entry.CaseNumber, &state, &entry.ArtifactPath, &entry.Attempt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan outcome row: %w", err)
		}

		entry.State = domain.OutcomeState(state)
		entry.UpdatedAt = updatedAt.UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome rows: %w", err)
	}

	return entries, nil
}
