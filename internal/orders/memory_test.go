package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/laundrydesk/laundrydesk/internal/shared"
)

// memoryRepo serialises every transaction behind one mutex, standing in for
// the order row lock, and rolls state back when the callback fails.
type memoryRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]Order
	items     map[uuid.UUID][]Item
	payments  map[uuid.UUID]Payment
	customers map[uuid.UUID]CustomerSummary
	services  map[uuid.UUID]ItemService
	taken     map[string]bool
	txCount   int
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders:    make(map[uuid.UUID]Order),
		items:     make(map[uuid.UUID][]Item),
		payments:  make(map[uuid.UUID]Payment),
		customers: make(map[uuid.UUID]CustomerSummary),
		services:  make(map[uuid.UUID]ItemService),
		taken:     make(map[string]bool),
	}
}

func (r *memoryRepo) addCustomer(name, phone string) uuid.UUID {
	id := uuid.New()
	r.customers[id] = CustomerSummary{ID: id, Name: name, Phone: phone}
	return id
}

func (r *memoryRepo) addService(name string) uuid.UUID {
	id := uuid.New()
	r.services[id] = ItemService{ID: id, Name: name, Unit: "kg"}
	return id
}

type memorySnapshot struct {
	orders   map[uuid.UUID]Order
	items    map[uuid.UUID][]Item
	payments map[uuid.UUID]Payment
}

func (r *memoryRepo) snapshot() memorySnapshot {
	s := memorySnapshot{
		orders:   make(map[uuid.UUID]Order, len(r.orders)),
		items:    make(map[uuid.UUID][]Item, len(r.items)),
		payments: make(map[uuid.UUID]Payment, len(r.payments)),
	}
	for k, v := range r.orders {
		s.orders[k] = v
	}
	for k, v := range r.items {
		s.items[k] = append([]Item(nil), v...)
	}
	for k, v := range r.payments {
		s.payments[k] = v
	}
	return s
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txCount++
	snap := r.snapshot()
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.orders, r.items, r.payments = snap.orders, snap.items, snap.payments
		return err
	}
	return nil
}

func (r *memoryRepo) details(o Order) Details {
	d := Details{Order: o, Customer: r.customers[o.CustomerID], Items: []Item{}, Payments: []Payment{}}
	for _, item := range r.items[o.ID] {
		if svc, ok := r.services[item.ServiceID]; ok {
			svc := svc
			item.Service = &svc
		}
		d.Items = append(d.Items, item)
	}
	for _, p := range r.payments {
		if p.OrderID == o.ID {
			d.Payments = append(d.Payments, p)
		}
	}
	return d
}

func (r *memoryRepo) Get(_ context.Context, id uuid.UUID) (*Details, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	d := r.details(o)
	return &d, nil
}

func (r *memoryRepo) List(_ context.Context, filter ListFilter) ([]Details, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Details
	for _, o := range r.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, r.details(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) Recent(_ context.Context, limit int) ([]Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Summary
	for _, o := range r.orders {
		c := r.customers[o.CustomerID]
		out = append(out, Summary{ID: o.ID, OrderNumber: o.OrderNumber, Status: o.Status, TotalAmount: o.TotalAmount,
			PaidAmount: o.PaidAmount, CustomerName: c.Name, CustomerPhone: c.Phone, CreatedAt: o.CreatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepo) CountByStatus(_ context.Context, statuses ...Status) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, o := range r.orders {
		for _, s := range statuses {
			if o.Status == s {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *memoryRepo) OrderNumberExists(_ context.Context, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.taken[number] {
		return true, nil
	}
	for _, o := range r.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) ListPayments(_ context.Context, filter PaymentFilter) ([]PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []PaymentRecord
	for _, p := range r.payments {
		if filter.OrderID != nil && p.OrderID != *filter.OrderID {
			continue
		}
		o := r.orders[p.OrderID]
		out = append(out, PaymentRecord{Payment: p, OrderNumber: o.OrderNumber, CustomerName: r.customers[o.CustomerID].Name})
	}
	return out, nil
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ErrNotFound
	}
	delete(r.orders, id)
	delete(r.items, id)
	for pid, p := range r.payments {
		if p.OrderID == id {
			delete(r.payments, pid)
		}
	}
	return nil
}

func (t *memoryTx) InsertOrder(_ context.Context, order Order) (*Order, error) {
	r := t.repo
	if _, ok := r.customers[order.CustomerID]; !ok {
		return nil, ErrUnknownReference
	}
	if r.taken[order.OrderNumber] {
		return nil, ErrOrderNumberTaken
	}
	for _, o := range r.orders {
		if o.OrderNumber == order.OrderNumber {
			return nil, ErrOrderNumberTaken
		}
	}
	now := time.Now()
	order.ID = uuid.New()
	order.CreatedAt = now.Add(time.Duration(len(r.orders)) * time.Millisecond)
	order.UpdatedAt = now
	r.orders[order.ID] = order
	return &order, nil
}

func (t *memoryTx) InsertItems(_ context.Context, orderID uuid.UUID, items []Item) error {
	r := t.repo
	for _, item := range items {
		if _, ok := r.services[item.ServiceID]; !ok {
			return ErrUnknownReference
		}
		item.ID = uuid.New()
		item.OrderID = orderID
		item.CreatedAt = time.Now()
		r.items[orderID] = append(r.items[orderID], item)
	}
	return nil
}

func (t *memoryTx) LockOrder(_ context.Context, id uuid.UUID) (*Order, error) {
	o, ok := t.repo.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (t *memoryTx) UpdateStatus(_ context.Context, id uuid.UUID, status Status, deliveryDate *time.Time) error {
	o, ok := t.repo.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	if deliveryDate != nil {
		o.DeliveryDate = deliveryDate
	}
	o.UpdatedAt = time.Now()
	t.repo.orders[id] = o
	return nil
}

func (t *memoryTx) InsertPayment(_ context.Context, payment Payment) (*Payment, error) {
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	t.repo.payments[payment.ID] = payment
	return &payment, nil
}

func (t *memoryTx) FindPayment(_ context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := t.repo.payments[id]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	return &p, nil
}

func (t *memoryTx) LockPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return t.FindPayment(ctx, id)
}

func (t *memoryTx) DeletePayment(_ context.Context, id uuid.UUID) error {
	if _, ok := t.repo.payments[id]; !ok {
		return ErrPaymentNotFound
	}
	delete(t.repo.payments, id)
	return nil
}

func (t *memoryTx) AddPaid(_ context.Context, orderID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	o, ok := t.repo.orders[orderID]
	if !ok {
		return decimal.Zero, ErrNotFound
	}
	o.PaidAmount = decimal.Max(decimal.Zero, o.PaidAmount.Add(delta))
	t.repo.orders[orderID] = o
	return o.PaidAmount, nil
}

type recordingAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *recordingAudit) Record(_ context.Context, log shared.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, log.Action)
	return nil
}

type countingCache struct {
	mu    sync.Mutex
	bumps int
}

func (c *countingCache) Bump(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bumps++
	return nil
}

type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memoryIdempotency) CheckAndInsert(_ context.Context, key, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys == nil {
		m.keys = make(map[string]bool)
	}
	if m.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = true
	return nil
}

func (m *memoryIdempotency) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
