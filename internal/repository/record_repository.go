package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/record-tracker/internal/model"
)

// RecordRepo persists records. Ownership is enforced by callers through
// the authorization gate; mutating queries still filter by user_id.
type RecordRepo struct {
	db *sql.DB
}

func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

const recordColumns = "id, user_id, date, content, status, created_at"

// Create inserts rec, assigning ID and CreatedAt when empty.
func (r *RecordRepo) Create(ctx context.Context, rec *model.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO records (id, user_id, date, content, status, created_at) VALUES (?,?,?,?,?,?)",
		rec.ID, rec.UserID, rec.Date, rec.Content, string(rec.Status), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// GetByID fetches a record regardless of owner. It returns ErrNotFound if
// no row matches.
func (r *RecordRepo) GetByID(ctx context.Context, id string) (*model.Record, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE id = ?", id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select record: %w", err)
	}
	return rec, nil
}

// ListByUser returns the records of userID, newest first.
func (r *RecordRepo) ListByUser(ctx context.Context, userID string) ([]*model.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE user_id = ? ORDER BY created_at DESC, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := []*model.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the mutable fields of rec. Concurrent updates of the same
// record are last-write-wins.
func (r *RecordRepo) Update(ctx context.Context, rec *model.Record) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE records SET date = ?, content = ?, status = ? WHERE id = ? AND user_id = ?",
		rec.Date, rec.Content, string(rec.Status), rec.ID, rec.UserID)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero affected rows when nothing changed, so only
		// a missing row is an error.
		if _, err := r.GetByID(ctx, rec.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the record id owned by userID.
func (r *RecordRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM records WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(s rowScanner) (*model.Record, error) {
	var (
		rec    model.Record
		status string
	)
	if err := s.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.Content, &status, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Status = model.Status(status)
	return &rec, nil
}
