package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/laundrydesk/laundrydesk/internal/shared"
)

type memoryRepo struct {
	items map[uuid.UUID]LaundryService
	used  map[uuid.UUID]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[uuid.UUID]LaundryService), used: make(map[uuid.UUID]bool)}
}

func (r *memoryRepo) Get(_ context.Context, id uuid.UUID) (*LaundryService, error) {
	s, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *memoryRepo) List(_ context.Context, category string, includeInactive bool) ([]LaundryService, error) {
	var out []LaundryService
	for _, s := range r.items {
		if !includeInactive && !s.IsActive {
			continue
		}
		if category != "" && (s.Category == nil || *s.Category != category) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := deref(out[i].Category), deref(out[j].Category)
		if ci != cj {
			return ci < cj
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *memoryRepo) Categories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, s := range r.items {
		if s.IsActive && s.Category != nil && !seen[*s.Category] {
			seen[*s.Category] = true
			out = append(out, *s.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *memoryRepo) Create(_ context.Context, svc LaundryService) (*LaundryService, error) {
	svc.ID = uuid.New()
	r.items[svc.ID] = svc
	return &svc, nil
}

func (r *memoryRepo) Update(_ context.Context, id uuid.UUID, updates map[string]any) error {
	s, ok := r.items[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["unit_price"].(decimal.Decimal); ok {
		s.UnitPrice = v
	}
	if v, ok := updates["is_active"].(bool); ok {
		s.IsActive = v
	}
	if v, ok := updates["name"].(string); ok {
		s.Name = v
	}
	r.items[id] = s
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	if r.used[id] {
		return ErrInUse
	}
	delete(r.items, id)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string { return &s }

func TestCreateServiceDefaultsUnitToKg(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	created, err := svc.Create(context.Background(), CreateServiceRequest{Name: "Cuci Kering", UnitPrice: decimal.NewFromInt(7000)})
	require.NoError(t, err)
	require.Equal(t, UnitKg, created.Unit)
	require.True(t, created.IsActive)
}

func TestServicePriceScale(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateServiceRequest{Name: "Karpet", UnitPrice: decimal.RequireFromString("12500.005")})
	require.ErrorIs(t, err, shared.ErrTooPrecise)
	require.Empty(t, repo.items)

	created, err := svc.Create(ctx, CreateServiceRequest{Name: "Karpet", UnitPrice: decimal.RequireFromString("12500.50")})
	require.NoError(t, err)

	price := decimal.RequireFromString("0.001")
	_, err = svc.Update(ctx, created.ID, UpdateServiceRequest{UnitPrice: &price})
	require.ErrorIs(t, err, shared.ErrTooPrecise)
}

func TestListHidesInactiveAndOrdersByCategory(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	iron, err := svc.Create(ctx, CreateServiceRequest{Name: "Setrika", UnitPrice: decimal.NewFromInt(5000), Category: strPtr(CategoryIroning)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateServiceRequest{Name: "Cuci Setrika", UnitPrice: decimal.NewFromInt(10000), Category: strPtr(CategoryWashing)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateServiceRequest{Name: "Bed Cover", Unit: UnitPiece, UnitPrice: decimal.NewFromInt(25000), Category: strPtr(CategoryWashing)})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "Setrika", all[0].Name)
	require.Equal(t, "Bed Cover", all[1].Name)

	inactive := false
	_, err = svc.Update(ctx, iron.ID, UpdateServiceRequest{IsActive: &inactive})
	require.NoError(t, err)

	washing, err := svc.List(ctx, CategoryWashing)
	require.NoError(t, err)
	require.Len(t, washing, 2)

	cats, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{CategoryWashing}, cats)

	everything, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, everything, 3)
}

func TestDeleteReferencedServiceFails(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	created, err := svc.Create(context.Background(), CreateServiceRequest{Name: "Karpet", UnitPrice: decimal.NewFromInt(15000)})
	require.NoError(t, err)
	repo.used[created.ID] = true
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrInUse)
}

func TestCreateServiceHandlerRejectsNegativePrice(t *testing.T) {
	h := NewHandler(nil, NewService(newMemoryRepo(), nil))
	r := chi.NewRouter()
	h.MountRoutes(r)

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/services", strings.NewReader(`{"name":"Cuci","unit_price":"-1","unit":"kg"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/services", strings.NewReader(`{"name":"Cuci","unit_price":"8000","unit":"litre"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/services", strings.NewReader(`{"name":"Cuci","unit_price":8000,"category":"ironing"}`)))
	require.Equal(t, http.StatusCreated, res.Code)

	res = httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/services/categories", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		Data []struct {
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "Setrika", body.Data[0].Label)
}
