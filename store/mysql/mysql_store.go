// Package mysql provides a MySQL implementation of the store.RunStore
// interface.
//
// Schema:
//
//	CREATE TABLE payconf_runs (
//	    id           BIGINT AUTO_INCREMENT PRIMARY KEY,
//	    run_id       VARCHAR(64)  NOT NULL UNIQUE,
//	    currency     VARCHAR(8)   NOT NULL,
//	    amount_minor BIGINT       NOT NULL,
//	    merchant_ref VARCHAR(64)  NOT NULL,
//	    final_state  VARCHAR(32)  NOT NULL,
//	    report       JSON         NOT NULL,
//	    duration_ms  BIGINT       NOT NULL,
//	    created_at   DATETIME(3)  NOT NULL
//	);
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"payconf/store"
)

// MySQLStore implements the store.RunStore interface using MySQL.
type MySQLStore struct {
	db *sql.DB
}

var _ store.RunStore = (*MySQLStore)(nil)

// New creates a new MySQLStore with the given database connection.
func New(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// SaveRun writes one run record.
func (s *MySQLStore) SaveRun(ctx context.Context, record *store.RunRecord) error {
	query := `
		INSERT INTO payconf_runs (
			run_id, currency, amount_minor, merchant_ref,
			final_state, report, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	result, err := s.db.ExecContext(ctx, query,
		record.RunID, record.Currency, record.AmountMinor, record.MerchantRef,
		record.FinalState, []byte(record.Report), record.DurationMS, record.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return store.ErrRunAlreadyExists
		}
		return fmt.Errorf("save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	record.ID = id

	return nil
}

// GetRun returns the record for a run ID.
func (s *MySQLStore) GetRun(ctx context.Context, runID string) (*store.RunRecord, error) {
	query := `
		SELECT id, run_id, currency, amount_minor, merchant_ref,
			final_state, report, duration_ms, created_at
		FROM payconf_runs
		WHERE run_id = ?
	`

	record := &store.RunRecord{}
	var report []byte
	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&record.ID, &record.RunID, &record.Currency, &record.AmountMinor,
		&record.MerchantRef, &record.FinalState, &report, &record.DurationMS,
		&record.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	record.Report = report

	return record, nil
}

// ListRuns returns records matching the filter, newest first.
func (s *MySQLStore) ListRuns(ctx context.Context, filter *store.RunFilter) ([]*store.RunRecord, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, run_id, currency, amount_minor, merchant_ref,
			final_state, report, duration_ms, created_at
		FROM payconf_runs
	`)

	var conditions []string
	var args []any
	if filter != nil && filter.Currency != "" {
		conditions = append(conditions, "currency = ?")
		args = append(args, filter.Currency)
	}
	if filter != nil && filter.FinalState != "" {
		conditions = append(conditions, "final_state = ?")
		args = append(args, filter.FinalState)
	}
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}

	sb.WriteString(" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?")
	limit := 100
	offset := 0
	if filter != nil && filter.Limit > 0 {
		limit = filter.Limit
	}
	if filter != nil && filter.Offset > 0 {
		offset = filter.Offset
	}
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []*store.RunRecord
	for rows.Next() {
		record := &store.RunRecord{}
		var report []byte
		if err := rows.Scan(
			&record.ID, &record.RunID, &record.Currency, &record.AmountMinor,
			&record.MerchantRef, &record.FinalState, &report, &record.DurationMS,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		record.Report = report
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return records, nil
}

// isDuplicateKeyError reports MySQL error 1062 (duplicate entry).
func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
