package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
	mu sync.Mutex
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `SELECT id, fields, synchronized, created_at FROM records`

// createdAtLayout is fixed-width so created_at sorts chronologically as text.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (r *SQLiteRepository) Put(ctx context.Context, rec *models.Record) (bool, error) {
	fields, err := models.EncodeFields(rec.Fields)
	if err != nil {
		return false, err
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	query := `INSERT INTO records (id, fields, synchronized, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, rec.ID, fields, rec.Synchronized, createdAt.UTC().Format(createdAtLayout))
	if err != nil {
		return false, fmt.Errorf("failed to insert record: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

// ListUnsynchronized returns pending records oldest first.
func (r *SQLiteRepository) ListUnsynchronized(ctx context.Context) ([]*models.Record, error) {
	return r.query(ctx, selectColumns+` WHERE synchronized = 0 ORDER BY created_at, id`)
}

func (r *SQLiteRepository) MarkSynchronized(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `UPDATE records SET synchronized = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark record synchronized: %w", err)
	}

	if err := dbx.ExpectSingleRow(res); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("record %s: %w", id, err)
		}
		return err
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Record, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]*models.Record, error) {
	return r.query(ctx, selectColumns+` ORDER BY created_at DESC, id`)
}

func (r *SQLiteRepository) CountUnsynchronized(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE synchronized = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]*models.Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	result := []*models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.Record, error) {
	var (
		rec       models.Record
		fields    []byte
		createdAt string
	)
	if err := s.Scan(&rec.ID, &fields, &rec.Synchronized, &createdAt); err != nil {
		return nil, err
	}

	f, err := models.DecodeFields(fields)
	if err != nil {
		return nil, err
	}
	rec.Fields = f

	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	return &rec, nil
}
