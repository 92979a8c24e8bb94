package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/offsync/internal/common"
	"github.com/dmitrijs2005/offsync/internal/dbx"
	"github.com/dmitrijs2005/offsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, record *models.Record) error {
	fields, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query :=
		`INSERT INTO records (id, fields)
		 VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET fields = EXCLUDED.fields, updated_at = now()
		 `

	if _, err := r.db.ExecContext(ctx, query, record.ID, fields); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Record, error) {
	query :=
		`SELECT id, fields, updated_at FROM records
		 WHERE id = $1
		 `

	var (
		rec    models.Record
		fields []byte
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &fields, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(fields, &rec.Fields); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return &rec, nil
}
