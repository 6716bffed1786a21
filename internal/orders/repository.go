package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/laundrydesk/laundrydesk/internal/platform/db"
)

const orderNumberConstraint = "orders_order_number_key"

// RepositoryPort abstracts order persistence for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id uuid.UUID) (*Details, error)
	List(ctx context.Context, filter ListFilter) ([]Details, error)
	Recent(ctx context.Context, limit int) ([]Summary, error)
	CountByStatus(ctx context.Context, statuses ...Status) (int, error)
	OrderNumberExists(ctx context.Context, number string) (bool, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]PaymentRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TxRepository exposes the writes that must share one transaction.
type TxRepository interface {
	InsertOrder(ctx context.Context, order Order) (*Order, error)
	InsertItems(ctx context.Context, orderID uuid.UUID, items []Item) error
	LockOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, deliveryDate *time.Time) error
	InsertPayment(ctx context.Context, payment Payment) (*Payment, error)
	FindPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	LockPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	DeletePayment(ctx context.Context, id uuid.UUID) error
	AddPaid(ctx context.Context, orderID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

// Repository is the pgx-backed store for orders, items and payments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a Repository on the shared pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	db db.Querier
}

// WithTx runs fn at read-committed isolation. Balance changes rely on
// SELECT ... FOR UPDATE on the order row, which serialises writers without
// the retry burden of repeatable-read serialisation failures.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{db: tx})
	})
}

const orderColumns = `o.id, o.order_number, o.customer_id, o.order_date, o.pickup_date, o.delivery_date,
	o.status, o.notes, o.total_amount, o.paid_amount, o.created_at, o.updated_at`

const detailsSelect = `SELECT ` + orderColumns + `,
	c.id, c.name, c.phone, c.email, c.address,
	COALESCE((
		SELECT json_agg(json_build_object(
			'id', i.id, 'order_id', i.order_id, 'service_id', i.service_id,
			'quantity', i.quantity, 'unit_price', i.unit_price, 'subtotal', i.subtotal,
			'created_at', i.created_at,
			'service', json_build_object('id', s.id, 'name', s.name, 'unit', s.unit, 'category', s.category)
		) ORDER BY i.created_at, i.id)
		FROM order_items i JOIN services s ON s.id = i.service_id
		WHERE i.order_id = o.id
	), '[]'::json) AS items,
	COALESCE((
		SELECT json_agg(json_build_object(
			'id', p.id, 'order_id', p.order_id, 'amount', p.amount,
			'payment_date', to_char(p.payment_date, 'YYYY-MM-DD"T00:00:00Z"'), 'payment_method', p.payment_method,
			'status', p.status, 'notes', p.notes, 'created_at', p.created_at
		) ORDER BY p.payment_date DESC, p.id)
		FROM payments p
		WHERE p.order_id = o.id
	), '[]'::json) AS payments
FROM orders o
JOIN customers c ON c.id = o.customer_id`

func orderFields(o *Order) []any {
	return []any{&o.ID, &o.OrderNumber, &o.CustomerID, &o.OrderDate, &o.PickupDate, &o.DeliveryDate,
		&o.Status, &o.Notes, &o.TotalAmount, &o.PaidAmount, &o.CreatedAt, &o.UpdatedAt}
}

func scanDetails(row pgx.Row) (Details, error) {
	var d Details
	dest := orderFields(&d.Order)
	dest = append(dest, &d.Customer.ID, &d.Customer.Name, &d.Customer.Phone, &d.Customer.Email, &d.Customer.Address,
		&d.Items, &d.Payments)
	if err := row.Scan(dest...); err != nil {
		return Details{}, err
	}
	if d.Items == nil {
		d.Items = []Item{}
	}
	if d.Payments == nil {
		d.Payments = []Payment{}
	}
	return d, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	if err := row.Scan(orderFields(&o)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Get loads the order aggregate in one round trip.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Details, error) {
	d, err := scanDetails(r.pool.QueryRow(ctx, detailsSelect+` WHERE o.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// List returns order aggregates, newest order_date first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Details, error) {
	var conditions []string
	var args []any
	argPos := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argPos))
		args = append(args, string(filter.Status))
		argPos++
	}
	if filter.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("o.customer_id = $%d", argPos))
		args = append(args, *filter.CustomerID)
		argPos++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("o.order_date >= $%d::date", argPos))
		args = append(args, *filter.From)
		argPos++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("o.order_date <= $%d::date", argPos))
		args = append(args, *filter.To)
	}

	query := detailsSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY o.order_date DESC, o.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Details
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Recent returns the latest orders by creation time.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.order_number, o.order_date, o.status, o.total_amount, o.paid_amount,
		       c.name, c.phone, o.created_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		ORDER BY o.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.OrderNumber, &s.OrderDate, &s.Status, &s.TotalAmount, &s.PaidAmount,
			&s.CustomerName, &s.CustomerPhone, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountByStatus counts orders in any of the given statuses, or all orders when none are given.
func (r *Repository) CountByStatus(ctx context.Context, statuses ...Status) (int, error) {
	var n int
	if len(statuses) == 0 {
		err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
		return n, err
	}
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status = ANY($1)`, values).Scan(&n)
	return n, err
}

func (r *Repository) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1)`, number).Scan(&exists)
	return exists, err
}

// ListPayments returns payments joined with their order and customer, newest first.
func (r *Repository) ListPayments(ctx context.Context, filter PaymentFilter) ([]PaymentRecord, error) {
	var conditions []string
	var args []any
	argPos := 1

	if filter.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("p.order_id = $%d", argPos))
		args = append(args, *filter.OrderID)
		argPos++
	}
	if filter.Method != "" {
		conditions = append(conditions, fmt.Sprintf("p.payment_method = $%d", argPos))
		args = append(args, string(filter.Method))
		argPos++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("p.payment_date >= $%d::date", argPos))
		args = append(args, *filter.From)
		argPos++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("p.payment_date <= $%d::date", argPos))
		args = append(args, *filter.To)
	}

	query := `
		SELECT p.id, p.order_id, p.amount, p.payment_date, p.payment_method, p.status, p.notes, p.created_at,
		       o.order_number, c.name
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		JOIN customers c ON c.id = o.customer_id`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY p.payment_date DESC, p.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentRecord
	for rows.Next() {
		var rec PaymentRecord
		if err := rows.Scan(&rec.ID, &rec.OrderID, &rec.Amount, &rec.PaymentDate, &rec.PaymentMethod, &rec.Status,
			&rec.Notes, &rec.CreatedAt, &rec.OrderNumber, &rec.CustomerName); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes the order; items and payments cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) InsertOrder(ctx context.Context, order Order) (*Order, error) {
	created, err := scanOrder(t.db.QueryRow(ctx, `
		INSERT INTO orders AS o (order_number, customer_id, order_date, pickup_date, status, notes, total_amount, paid_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+orderColumns,
		order.OrderNumber, order.CustomerID, order.OrderDate, order.PickupDate, string(order.Status),
		order.Notes, order.TotalAmount, order.PaidAmount,
	))
	if err != nil {
		switch {
		case db.IsUniqueViolation(err, orderNumberConstraint):
			return nil, ErrOrderNumberTaken
		case db.IsForeignKeyViolation(err):
			return nil, ErrUnknownReference
		}
		return nil, db.MapCheckViolation(err)
	}
	return created, nil
}

func (t *txRepo) InsertItems(ctx context.Context, orderID uuid.UUID, items []Item) error {
	for _, item := range items {
		_, err := t.db.Exec(ctx, `
			INSERT INTO order_items (order_id, service_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, item.ServiceID, item.Quantity, item.UnitPrice, item.Subtotal,
		)
		if err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrUnknownReference
			}
			return db.MapCheckViolation(err)
		}
	}
	return nil
}

func (t *txRepo) LockOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return scanOrder(t.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id = $1 FOR UPDATE`, id))
}

func (t *txRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, deliveryDate *time.Time) error {
	tag, err := t.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, delivery_date = COALESCE($3, delivery_date), updated_at = NOW()
		WHERE id = $1`, id, string(status), deliveryDate)
	if err != nil {
		return db.MapCheckViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const paymentColumns = `id, order_id, amount, payment_date, payment_method, status, notes, created_at`

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	if err := row.Scan(&p.ID, &p.OrderID, &p.Amount, &p.PaymentDate, &p.PaymentMethod, &p.Status, &p.Notes, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (t *txRepo) InsertPayment(ctx context.Context, payment Payment) (*Payment, error) {
	created, err := scanPayment(t.db.QueryRow(ctx, `
		INSERT INTO payments (order_id, amount, payment_date, payment_method, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+paymentColumns,
		payment.OrderID, payment.Amount, payment.PaymentDate, string(payment.PaymentMethod),
		string(payment.Status), payment.Notes,
	))
	if err != nil {
		return nil, db.MapCheckViolation(err)
	}
	return created, nil
}

func (t *txRepo) FindPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return scanPayment(t.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

func (t *txRepo) LockPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return scanPayment(t.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id))
}

func (t *txRepo) DeletePayment(ctx context.Context, id uuid.UUID) error {
	tag, err := t.db.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// AddPaid applies delta to paid_amount in SQL, clamped at zero.
func (t *txRepo) AddPaid(ctx context.Context, orderID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	var paid decimal.Decimal
	err := t.db.QueryRow(ctx, `
		UPDATE orders
		SET paid_amount = GREATEST(0, paid_amount + $2), updated_at = NOW()
		WHERE id = $1
		RETURNING paid_amount`, orderID, delta).Scan(&paid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrNotFound
		}
		return decimal.Zero, err
	}
	return paid, nil
}
