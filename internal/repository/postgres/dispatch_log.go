package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"accreditation-backend/internal/domain"
	"accreditation-backend/internal/logger"
	"accreditation-backend/internal/repository"
)

type dispatchLogRepository struct {
	db *sql.DB
}

func NewDispatchLogRepository(db *sql.DB) repository.DispatchLogRepository {
	return &dispatchLogRepository{db: db}
}

func (r *dispatchLogRepository) Claim(ctx context.Context, e *repository.DispatchEntry) (bool, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	query := `INSERT INTO dispatch_log (id, event_key, request_id, action, run_id, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (event_key) DO NOTHING`
	logger.DatabaseCall("INSERT", "dispatch_log", "eventKey", e.EventKey, "runID", e.RunID)

	if e.CreatedOn.IsZero() {
		e.CreatedOn = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx, query, e.ID, e.EventKey, e.RequestID, e.Action, e.RunID, e.CreatedOn)
	if err != nil {
		logger.DatabaseResult("INSERT", err, "eventKey", e.EventKey)
		return false, fmt.Errorf("failed to claim %s: %w", e.EventKey, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	logger.DatabaseResult("INSERT", nil, "eventKey", e.EventKey, "claimed", n == 1)
	return n == 1, nil
}

func (r *dispatchLogRepository) Complete(ctx context.Context, eventKey string, outcome domain.Outcome, pdfURL, errMsg string) error {
	query := `UPDATE dispatch_log SET outcome = $1, pdf_url = $2, error = $3, completed_on = $4 WHERE event_key = $5`
	logger.DatabaseCall("UPDATE", "dispatch_log", "eventKey", eventKey, "outcome", outcome)
	result, err := r.db.ExecContext(ctx, query, string(outcome), nullString(pdfURL), nullString(errMsg), time.Now().UTC(), eventKey)
	logger.DatabaseResult("UPDATE", err, "eventKey", eventKey)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("dispatch %s: %w", eventKey, domain.ErrNotFound)
	}
	return nil
}

func (r *dispatchLogRepository) GetByEventKey(ctx context.Context, eventKey string) (*repository.DispatchEntry, error) {
	query := `SELECT id, event_key, request_id, action, run_id, outcome, pdf_url, error, created_on, completed_on
	          FROM dispatch_log WHERE event_key = $1`
	var (
		e                    repository.DispatchEntry
		outcome, pdfURL, msg sql.NullString
		completedOn          sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, eventKey).Scan(
		&e.ID, &e.EventKey, &e.RequestID, &e.Action, &e.RunID,
		&outcome, &pdfURL, &msg, &e.CreatedOn, &completedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("dispatch %s: %w", eventKey, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	e.Outcome = domain.Outcome(outcome.String)
	e.PDFURL = pdfURL.String
	e.Error = msg.String
	if completedOn.Valid {
		t := completedOn.Time
		e.CompletedOn = &t
	}
	return &e, nil
}

func (r *dispatchLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM dispatch_log WHERE created_on < $1`
	logger.DatabaseCall("DELETE", "dispatch_log", "before", before)
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		logger.DatabaseResult("DELETE", err)
		return 0, err
	}
	n, err := result.RowsAffected()
	logger.DatabaseResult("DELETE", err, "rows", n)
	return n, err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
