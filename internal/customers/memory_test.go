package customers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepo struct {
	mu        sync.RWMutex
	customers map[uuid.UUID]Customer
	orders    map[uuid.UUID]int
	clock     time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		customers: make(map[uuid.UUID]Customer),
		orders:    make(map[uuid.UUID]int),
		clock:     time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) Get(_ context.Context, id uuid.UUID) (*Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepo) List(_ context.Context, search string, limit, offset int) ([]Customer, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(search))
	var matched []Customer
	for _, c := range r.customers {
		if !c.IsActive {
			continue
		}
		if needle != "" {
			hay := strings.ToLower(c.Name + " " + c.Phone)
			if c.Email != nil {
				hay += " " + strings.ToLower(*c.Email)
			}
			if !strings.Contains(hay, needle) {
				continue
			}
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *memoryRepo) ListAll(_ context.Context) ([]Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) CountActive(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range r.customers {
		if c.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) Create(_ context.Context, customer Customer) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.Phone == customer.Phone {
			return nil, ErrPhoneTaken
		}
	}
	r.clock = r.clock.Add(time.Minute)
	customer.ID = uuid.New()
	customer.CreatedAt = r.clock
	customer.UpdatedAt = r.clock
	r.customers[customer.ID] = customer
	return &customer, nil
}

func (r *memoryRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["phone"].(string); ok {
		for otherID, other := range r.customers {
			if otherID != id && other.Phone == v {
				return ErrPhoneTaken
			}
		}
		c.Phone = v
	}
	if v, ok := updates["name"].(string); ok {
		c.Name = v
	}
	if v, ok := updates["email"].(string); ok {
		c.Email = &v
	}
	if v, ok := updates["notes"].(string); ok {
		c.Notes = &v
	}
	if v, ok := updates["is_active"].(bool); ok {
		c.IsActive = v
	}
	r.customers[id] = c
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[id]; !ok {
		return ErrNotFound
	}
	if r.orders[id] > 0 {
		return ErrHasOrders
	}
	delete(r.customers, id)
	return nil
}

type countingInvalidator struct{ bumps int }

func (c *countingInvalidator) Bump(context.Context) error {
	c.bumps++
	return nil
}
