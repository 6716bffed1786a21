package expenses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/laundrydesk/laundrydesk/internal/platform/db"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Expense, error)
	List(ctx context.Context, filter Filter) ([]Expense, error)
	Total(ctx context.Context, filter Filter) (decimal.Decimal, error)
	ByCategory(ctx context.Context, filter Filter) ([]CategoryTotal, error)
	Categories(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, e Expense) (*Expense, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db db.Querier
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const expenseColumns = `id, category, description, amount, expense_date, payment_method, notes, created_at, updated_at`

func scanExpense(row pgx.Row) (Expense, error) {
	var e Expense
	err := row.Scan(&e.ID, &e.Category, &e.Description, &e.Amount, &e.ExpenseDate, &e.PaymentMethod, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func whereClause(filter Filter) (string, []any) {
	var conditions []string
	var args []any
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("expense_date >= $%d::date", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("expense_date <= $%d::date", len(args)))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Expense, error) {
	e, err := scanExpense(r.db.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *repository) List(ctx context.Context, filter Filter) ([]Expense, error) {
	where, args := whereClause(filter)
	rows, err := r.db.Query(ctx, `SELECT `+expenseColumns+` FROM expenses `+where+` ORDER BY expense_date DESC, created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) Total(ctx context.Context, filter Filter) (decimal.Decimal, error) {
	where, args := whereClause(filter)
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses `+where, args...).Scan(&total)
	return total, err
}

func (r *repository) ByCategory(ctx context.Context, filter Filter) ([]CategoryTotal, error) {
	where, args := whereClause(filter)
	rows, err := r.db.Query(ctx, `SELECT category, SUM(amount) FROM expenses `+where+` GROUP BY category ORDER BY SUM(amount) DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, err
		}
		ct.Label = ct.Category.Label()
		out = append(out, ct)
	}
	return out, rows.Err()
}

func (r *repository) Categories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT category FROM expenses ORDER BY category`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[Category])
}

func (r *repository) Create(ctx context.Context, e Expense) (*Expense, error) {
	created, err := scanExpense(r.db.QueryRow(ctx, `
		INSERT INTO expenses (category, description, amount, expense_date, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+expenseColumns,
		e.Category, e.Description, e.Amount, e.ExpenseDate, e.PaymentMethod, e.Notes,
	))
	if err != nil {
		return nil, db.MapCheckViolation(err)
	}
	return &created, nil
}

var updatableColumns = []string{"category", "description", "amount", "expense_date", "payment_method", "notes"}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	query := "UPDATE expenses SET updated_at = NOW()"
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
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
