package orders

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
	"github.com/laundrydesk/laundrydesk/internal/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

type fixture struct {
	repo     *memoryRepo
	svc      *Service
	audit    *recordingAudit
	cache    *countingCache
	customer uuid.UUID
	wash     uuid.UUID
	iron     uuid.UUID
}

func newFixture(t *testing.T, cfg ServiceConfig) *fixture {
	t.Helper()
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	cache := &countingCache{}
	f := &fixture{
		repo:     repo,
		audit:    audit,
		cache:    cache,
		svc:      NewService(repo, audit, &memoryIdempotency{}, cache, cfg),
		customer: repo.addCustomer("Budi", "081234567890"),
		wash:     repo.addService("Cuci Kering"),
		iron:     repo.addService("Setrika"),
	}
	return f
}

func (f *fixture) createOrder(t *testing.T) *Details {
	t.Helper()
	order, err := f.svc.Create(context.Background(), CreateOrderRequest{
		CustomerID: f.customer,
		Items: []CreateItemRequest{
			{ServiceID: f.wash, Quantity: dec("2"), UnitPrice: dec("10000")},
			{ServiceID: f.iron, Quantity: dec("1"), UnitPrice: dec("5000")},
		},
	})
	require.NoError(t, err)
	return order
}

func TestCreatePaySettleAndReverse(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()

	order := f.createOrder(t)
	requireAmount(t, "25000", order.TotalAmount)
	requireAmount(t, "0", order.PaidAmount)
	assert.Equal(t, StatusPending, order.Status)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-\d{4}$`), order.OrderNumber)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Budi", order.Customer.Name)

	payment, err := f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: dec("15000"), PaymentMethod: MethodCash}, "")
	require.NoError(t, err)
	assert.Equal(t, PaymentCompleted, payment.Status)

	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	requireAmount(t, "15000", got.PaidAmount)
	requireAmount(t, "10000", got.Remaining())

	require.NoError(t, f.svc.DeletePayment(ctx, payment.ID))
	got, err = f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	requireAmount(t, "0", got.PaidAmount)
	requireAmount(t, "25000", got.TotalAmount)

	assert.Equal(t, []string{"order:create", "payment:create", "payment:delete"}, f.audit.actions)
	assert.Equal(t, 3, f.cache.bumps)
}

func TestCreateComputesExactFractionalTotal(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	order, err := f.svc.Create(context.Background(), CreateOrderRequest{
		CustomerID: f.customer,
		Items: []CreateItemRequest{
			{ServiceID: f.wash, Quantity: dec("2.5"), UnitPrice: dec("7000")},
			{ServiceID: f.iron, Quantity: dec("0.1"), UnitPrice: dec("0.3")},
		},
	})
	require.NoError(t, err)
	requireAmount(t, "17500.03", order.TotalAmount)
	requireAmount(t, "17500", order.Items[0].Subtotal)
	requireAmount(t, "0.03", order.Items[1].Subtotal)
}

func TestCreateRejectsValuesBeyondStoredScale(t *testing.T) {
	cases := []struct {
		name      string
		quantity  string
		unitPrice string
	}{
		{"quantity", "0.125", "1000"},
		{"unit price", "1", "0.333"},
		{"subtotal", "0.15", "0.15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, ServiceConfig{})
			_, err := f.svc.Create(context.Background(), CreateOrderRequest{
				CustomerID: f.customer,
				Items:      []CreateItemRequest{{ServiceID: f.wash, Quantity: dec(tc.quantity), UnitPrice: dec(tc.unitPrice)}},
			})
			require.ErrorIs(t, err, shared.ErrTooPrecise)
			require.ErrorIs(t, err, httpx.ErrValidation)
			assert.Empty(t, f.repo.orders)
		})
	}
}

func TestCreateAcceptsTrailingZeros(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	order, err := f.svc.Create(context.Background(), CreateOrderRequest{
		CustomerID: f.customer,
		Items:      []CreateItemRequest{{ServiceID: f.wash, Quantity: dec("2.500"), UnitPrice: dec("7000.000")}},
	})
	require.NoError(t, err)
	requireAmount(t, "17500", order.TotalAmount)
}

func TestCreateRejectsEmptyItems(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	_, err := f.svc.Create(context.Background(), CreateOrderRequest{CustomerID: f.customer})
	require.ErrorIs(t, err, ErrEmptyItems)
	assert.Empty(t, f.repo.orders)
}

func TestCreateIsAtomicWhenAnItemFails(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	_, err := f.svc.Create(context.Background(), CreateOrderRequest{
		CustomerID: f.customer,
		Items: []CreateItemRequest{
			{ServiceID: f.wash, Quantity: dec("1"), UnitPrice: dec("10000")},
			{ServiceID: uuid.New(), Quantity: dec("1"), UnitPrice: dec("10000")},
		},
	})
	require.ErrorIs(t, err, ErrOrderCreationFailed)
	require.ErrorIs(t, err, ErrUnknownReference)
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, f.repo.orders)
	assert.Empty(t, f.repo.items)
	assert.Empty(t, f.audit.actions)
}

// blindRepo never reports an existing number, forcing collisions onto the insert.
type blindRepo struct {
	*memoryRepo
}

func (blindRepo) OrderNumberExists(context.Context, string) (bool, error) {
	return false, nil
}

func sequenceGenerator(now time.Time, suffixes ...int) *NumberGenerator {
	i := 0
	return &NumberGenerator{
		now: func() time.Time { return now },
		suffix: func() int {
			s := suffixes[i%len(suffixes)]
			i++
			return s
		},
		maxAttempts: orderNumberAttempts,
	}
}

func TestCreateRetriesTransactionOnNumberCollision(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.repo.taken[FormatOrderNumber(day, 1)] = true

	svc := NewService(blindRepo{f.repo}, nil, nil, nil, ServiceConfig{})
	svc.numbers = sequenceGenerator(day, 1, 2)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerID: f.customer,
		Items:      []CreateItemRequest{{ServiceID: f.wash, Quantity: dec("1"), UnitPrice: dec("5000")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240301-0002", order.OrderNumber)
	assert.Equal(t, 2, f.repo.txCount)
}

func TestCreateGivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	f.repo.taken[FormatOrderNumber(day, 7)] = true

	svc := NewService(blindRepo{f.repo}, nil, nil, nil, ServiceConfig{})
	svc.numbers = sequenceGenerator(day, 7)

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerID: f.customer,
		Items:      []CreateItemRequest{{ServiceID: f.wash, Quantity: dec("1"), UnitPrice: dec("5000")}},
	})
	require.ErrorIs(t, err, ErrOrderCreationFailed)
	assert.Equal(t, createAttempts, f.repo.txCount)
	assert.Empty(t, f.repo.orders)
}

func TestNumberGenerator(t *testing.T) {
	day := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "ORD-20241231-0042", FormatOrderNumber(day, 42))
	assert.Equal(t, "ORD-20241231-9999", FormatOrderNumber(day, 9999))

	gen := sequenceGenerator(day, 5, 5, 6)
	seen := map[string]bool{FormatOrderNumber(day, 5): true}
	exists := func(_ context.Context, n string) (bool, error) { return seen[n], nil }
	n, err := gen.Next(context.Background(), exists)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20241231-0006", n)

	always := func(context.Context, string) (bool, error) { return true, nil }
	_, err = gen.Next(context.Background(), always)
	require.ErrorIs(t, err, ErrOrderNumberExhausted)

	failing := func(context.Context, string) (bool, error) { return false, errors.New("db down") }
	_, err = gen.Next(context.Background(), failing)
	require.Error(t, err)
}

func TestUpdateStatusPermissiveAllowsAnyMove(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()
	order := f.createOrder(t)

	for _, s := range []Status{StatusCompleted, StatusPending, StatusCancelled, StatusReady} {
		got, err := f.svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: s})
		require.NoError(t, err)
		assert.Equal(t, s, got.Status)
	}
	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	requireAmount(t, "25000", got.TotalAmount)
}

func TestUpdateStatusDeliveryDateOnlyOnCompletion(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()
	order := f.createOrder(t)

	got, err := f.svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusReady, DeliveryDate: "2024-03-05"})
	require.NoError(t, err)
	assert.Nil(t, got.DeliveryDate)

	got, err = f.svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusCompleted})
	require.NoError(t, err)
	assert.Nil(t, got.DeliveryDate)

	got, err = f.svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusCompleted, DeliveryDate: "2024-03-06"})
	require.NoError(t, err)
	require.NotNil(t, got.DeliveryDate)
	assert.Equal(t, "2024-03-06", got.DeliveryDate.Format(time.DateOnly))
}

func TestUpdateStatusErrors(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()
	order := f.createOrder(t)

	_, err := f.svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "failed"})
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, uuid.New(), UpdateStatusRequest{Status: StatusReady})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusForwardPolicy(t *testing.T) {
	f := newFixture(t, ServiceConfig{StrictTransitions: true})
	ctx := context.Background()
	order := f.createOrder(t)

	_, err := f.svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusReady})
	require.ErrorIs(t, err, ErrInvalidTransition)

	for _, s := range []Status{StatusProcessing, StatusReady, StatusCompleted} {
		_, err := f.svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: s})
		require.NoError(t, err)
	}
	_, err = f.svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: StatusCancelled})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestForwardTransitionTable(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusPending, StatusProcessing}:   true,
		{StatusProcessing, StatusReady}:     true,
		{StatusReady, StatusCompleted}:      true,
		{StatusPending, StatusCancelled}:    true,
		{StatusProcessing, StatusCancelled}: true,
		{StatusReady, StatusCancelled}:      true,
	}
	all := []Status{StatusPending, StatusProcessing, StatusReady, StatusCompleted, StatusCancelled}
	for _, from := range all {
		for _, to := range all {
			err := Forward(from, to)
			if from == to || allowed[[2]Status{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
			}
			assert.NoError(t, Permissive(from, to))
		}
	}
}

func TestDeleteMissingPaymentMutatesNothing(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()
	order := f.createOrder(t)
	_, err := f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: dec("5000"), PaymentMethod: MethodTransfer}, "")
	require.NoError(t, err)
	bumps := f.cache.bumps

	err = f.svc.DeletePayment(ctx, uuid.New())
	require.ErrorIs(t, err, ErrPaymentNotFound)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	requireAmount(t, "5000", got.PaidAmount)
	assert.Len(t, got.Payments, 1)
	assert.Equal(t, bumps, f.cache.bumps)
}

func TestOverpaymentRejected(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()
	order := f.createOrder(t)

	_, err := f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: dec("20000"), PaymentMethod: MethodCash}, "")
	require.NoError(t, err)

	_, err = f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: dec("5000.01"), PaymentMethod: MethodCash}, "")
	require.ErrorIs(t, err, ErrOverpaymentRejected)
	require.ErrorIs(t, err, httpx.ErrConflict)

	_, err = f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: dec("5000"), PaymentMethod: MethodCash}, "")
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	requireAmount(t, "25000", got.PaidAmount)
	assert.True(t, got.PaidOff())
	assert.Len(t, got.Payments, 2)
}

func TestRecordPaymentValidation(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()

	_, err := f.svc.RecordPayment(ctx, uuid.New(), RecordPaymentRequest{Amount: dec("0"), PaymentMethod: MethodCash}, "")
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.svc.RecordPayment(ctx, uuid.New(), RecordPaymentRequest{Amount: dec("10"), PaymentMethod: MethodCash}, "")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.repo.payments)

	order := f.createOrder(t)
	_, err = f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: dec("0.004"), PaymentMethod: MethodCash}, "")
	require.ErrorIs(t, err, shared.ErrTooPrecise)
	assert.Empty(t, f.repo.payments)
	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	requireAmount(t, "0", got.PaidAmount)
}

func TestRecordPaymentKeepsCalendarDay(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()
	wib := time.FixedZone("WIB", 7*3600)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 15, 23, 30, 0, 0, wib) }
	order := f.createOrder(t)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), order.OrderDate)

	today, err := f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: dec("5000"), PaymentMethod: MethodCash}, "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), today.PaymentDate)

	backdated, err := f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: dec("5000"), PaymentMethod: MethodCash, PaymentDate: "2024-03-14"}, "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), backdated.PaymentDate)
}

func TestPaidAmountTracksPaymentSequence(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()
	order := f.createOrder(t)
	rng := rand.New(rand.NewPCG(7, 11))

	var live []Payment
	for step := 0; step < 200; step++ {
		if len(live) > 0 && rng.IntN(3) == 0 {
			idx := rng.IntN(len(live))
			require.NoError(t, f.svc.DeletePayment(ctx, live[idx].ID))
			live = append(live[:idx], live[idx+1:]...)
		} else {
			amount := decimal.NewFromInt(int64(rng.IntN(6000) + 1))
			p, err := f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: amount, PaymentMethod: MethodEWallet}, "")
			if errors.Is(err, ErrOverpaymentRejected) {
				continue
			}
			require.NoError(t, err)
			live = append(live, *p)
		}

		sum := decimal.Zero
		for _, p := range live {
			sum = sum.Add(p.Amount)
		}
		got, err := f.svc.Get(ctx, order.ID)
		require.NoError(t, err)
		requireAmount(t, sum.String(), got.PaidAmount)
		requireAmount(t, "25000", got.TotalAmount)
	}
}

func TestConcurrentPaymentsNeverLoseUpdates(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()
	order := f.createOrder(t)

	const workers = 30
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted, rejected := 0, 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: dec("1000"), PaymentMethod: MethodCash}, "")
			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, ErrOverpaymentRejected) {
				rejected++
				return
			}
			if err == nil {
				accepted++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 25, accepted)
	assert.Equal(t, workers-25, rejected)
	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	requireAmount(t, "25000", got.PaidAmount)
}

func TestIdempotencyKeyBlocksReplay(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()
	order := f.createOrder(t)
	req := RecordPaymentRequest{Amount: dec("1000"), PaymentMethod: MethodDebit}

	_, err := f.svc.RecordPayment(ctx, order.ID, req, "key-1")
	require.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, order.ID, req, "key-1")
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
	require.ErrorIs(t, err, httpx.ErrConflict)

	_, err = f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: dec("99999"), PaymentMethod: MethodDebit}, "key-2")
	require.ErrorIs(t, err, ErrOverpaymentRejected)
	_, err = f.svc.RecordPayment(ctx, order.ID, req, "key-2")
	require.NoError(t, err, "failed attempt must release its key")

	got, err := f.svc.Get(ctx, order.ID)
	require.NoError(t, err)
	requireAmount(t, "2000", got.PaidAmount)
}

func TestCountActiveAndRecent(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()
	first := f.createOrder(t)
	f.createOrder(t)
	third := f.createOrder(t)

	_, err := f.svc.UpdateStatus(ctx, first.ID, UpdateStatusRequest{Status: StatusCompleted})
	require.NoError(t, err)

	n, err := f.svc.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	recent, err := f.svc.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, third.ID, recent[0].ID)

	_, err = f.svc.List(ctx, ListFilter{Status: "bogus"})
	require.ErrorIs(t, err, ErrInvalidStatus)

	done, err := f.svc.List(ctx, ListFilter{Status: StatusCompleted})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, first.ID, done[0].ID)
}

func TestDeleteOrderCascadesPayments(t *testing.T) {
	f := newFixture(t, ServiceConfig{})
	ctx := context.Background()
	order := f.createOrder(t)
	_, err := f.svc.RecordPayment(ctx, order.ID, RecordPaymentRequest{Amount: dec("1000"), PaymentMethod: MethodCash}, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, order.ID))
	_, err = f.svc.Get(ctx, order.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.repo.payments)

	require.ErrorIs(t, f.svc.Delete(ctx, order.ID), ErrNotFound)
}
