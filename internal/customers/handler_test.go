package customers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/laundrydesk/laundrydesk/internal/platform/httpx"
)

func newTestRouter(t *testing.T) (http.Handler, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	h := NewHandler(nil, NewService(repo, nil))
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r, repo
}

func TestCreateCustomerHandler(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"name":"Hana","phone":"081234567890","email":"hana@example.com"}`
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, res.Code)

	var created Customer
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	require.Equal(t, "Hana", created.Name)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body)))
	require.Equal(t, http.StatusConflict, res.Code)
}

func TestCreateCustomerHandlerValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"name":"","email":"nope"}`)))
	require.Equal(t, http.StatusUnprocessableEntity, res.Code)

	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	require.Equal(t, "required", problem.Errors["name"])
	require.Equal(t, "required", problem.Errors["phone"])
	require.Equal(t, "email", problem.Errors["email"])
}

func TestShowCustomerHandlerNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/customers/1b4e28ba-2fa1-11d2-883f-0016d3cca427", nil))
	require.Equal(t, http.StatusNotFound, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/customers/not-a-uuid", nil))
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestListCustomersHandler(t *testing.T) {
	router, _ := newTestRouter(t)
	for _, body := range []string{`{"name":"Ira","phone":"0815"}`, `{"name":"Joko","phone":"0816"}`} {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body)))
		require.Equal(t, http.StatusCreated, res.Code)
	}

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/customers?search=joko", nil))
	require.Equal(t, http.StatusOK, res.Code)
	var out listResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	require.Equal(t, 1, out.Pagination.Total)
}
