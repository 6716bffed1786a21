package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laundrydesk/laundrydesk/internal/platform/db"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*LaundryService, error)
	List(ctx context.Context, category string, includeInactive bool) ([]LaundryService, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, svc LaundryService) (*LaundryService, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db db.Querier
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const serviceColumns = `id, name, description, unit_price, unit, category, is_active, created_at, updated_at`

func scanService(row pgx.Row) (LaundryService, error) {
	var s LaundryService
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.UnitPrice, &s.Unit, &s.Category, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*LaundryService, error) {
	s, err := scanService(r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) List(ctx context.Context, category string, includeInactive bool) ([]LaundryService, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE 1=1`
	var args []any
	if !includeInactive {
		query += ` AND is_active = TRUE`
	}
	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	query += ` ORDER BY category NULLS LAST, name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LaundryService
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT category FROM services WHERE is_active = TRUE AND category IS NOT NULL ORDER BY category`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *repository) Create(ctx context.Context, svc LaundryService) (*LaundryService, error) {
	s, err := scanService(r.db.QueryRow(ctx, `
		INSERT INTO services (name, description, unit_price, unit, category, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+serviceColumns,
		svc.Name, svc.Description, svc.UnitPrice, svc.Unit, svc.Category, svc.IsActive,
	))
	if err != nil {
		return nil, db.MapCheckViolation(err)
	}
	return &s, nil
}

var updatableColumns = []string{"name", "description", "unit_price", "unit", "category", "is_active"}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	query := "UPDATE services SET updated_at = NOW()"
	var args []any
	for _, col := range updatableColumns {
		v, ok := updates[col]
		if !ok {
			continue
		}
		args = append(args, v)
		query += fmt.Sprintf(", %s = $%d", col, len(args))
	}
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return db.MapCheckViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
