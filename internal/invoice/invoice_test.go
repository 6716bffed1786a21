package invoice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laundrydesk/laundrydesk/internal/orders"
)

var march15 = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type orderStub struct {
	details *orders.Details
	err     error
}

func (s orderStub) Get(context.Context, uuid.UUID) (*orders.Details, error) {
	return s.details, s.err
}

type pdfStub struct {
	html []byte
	err  error
}

func (p *pdfStub) RenderHTML(_ context.Context, html []byte) ([]byte, error) {
	p.html = html
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.7"), nil
}

func fixtureDetails() *orders.Details {
	notes := "Jangan pakai pewangi <kuat>"
	pickup := march15.AddDate(0, 0, 2)
	return &orders.Details{
		Order: orders.Order{
			ID:          uuid.New(),
			OrderNumber: "ORD-20240315-0001",
			OrderDate:   march15,
			PickupDate:  &pickup,
			Status:      orders.StatusProcessing,
			Notes:       &notes,
			TotalAmount: decimal.NewFromInt(45000),
			PaidAmount:  decimal.NewFromInt(20000),
		},
		Customer: orders.CustomerSummary{Name: "Siti Aminah", Phone: "081234567890"},
		Items: []orders.Item{
			{
				Quantity:  decimal.RequireFromString("2.5"),
				UnitPrice: decimal.NewFromInt(10000),
				Subtotal:  decimal.NewFromInt(25000),
				Service:   &orders.ItemService{Name: "Cuci Setrika", Unit: "kg"},
			},
			{
				Quantity:  decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(20000),
				Subtotal:  decimal.NewFromInt(20000),
			},
		},
	}
}

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(Business{Name: "Laundry Bersih", Address: "Jl. Melati 3", Phone: "0221234567"})
	require.NoError(t, err)
	r.now = func() time.Time { return march15 }
	return r
}

func TestRenderReceipt(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newRenderer(t).Render(&buf, fixtureDetails()))
	html := buf.String()

	for _, want := range []string{
		"NOTA LAUNDRY",
		"Laundry Bersih",
		"ORD-20240315-0001",
		"15 Maret 2024",
		"17 Maret 2024",
		"Diproses",
		"0812-3456-7890",
		"Cuci Setrika",
		"Unknown Service",
		"2,5",
		"Rp 45.000",
		"Rp 20.000",
		"Rp 25.000",
		"Jangan pakai pewangi &lt;kuat&gt;",
	} {
		assert.Contains(t, html, want)
	}
	assert.NotContains(t, html, "Tanggal Selesai")
	assert.NotContains(t, html, "Alamat:")
}

func TestFormatDateHandlesPointers(t *testing.T) {
	var missing *time.Time
	assert.Equal(t, "-", formatDate(missing))
	assert.Equal(t, "15 Maret 2024", formatDate(&march15))
	assert.Equal(t, "-", formatDate("2024-03-15"))
}

func TestClientRenderHTML(t *testing.T) {
	var gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		f, hdr, err := r.FormFile("files")
		if !assert.NoError(t, err) {
			return
		}
		data, _ := io.ReadAll(f)
		gotFile = hdr.Filename + ":" + string(data)
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	doc, err := NewClient(srv.URL+"/").RenderHTML(context.Background(), []byte("<p>hi</p>"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(doc))
	assert.Equal(t, "index.html:<p>hi</p>", gotFile)
}

func TestClientErrors(t *testing.T) {
	_, err := NewClient("").RenderHTML(context.Background(), nil)
	require.ErrorIs(t, err, ErrRendererUnavailable)
	require.ErrorIs(t, NewClient("").Ping(context.Background()), ErrRendererUnavailable)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()
	_, err = NewClient(srv.URL).RenderHTML(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	require.Error(t, NewClient(srv.URL).Ping(context.Background()))
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.MountRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlerHTML(t *testing.T) {
	h := NewHandler(nil, orderStub{details: fixtureDetails()}, newRenderer(t), nil)
	rec := serve(h, "/invoices/"+uuid.NewString()+"/html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), "ORD-20240315-0001")
}

func TestHandlerPDF(t *testing.T) {
	pdf := &pdfStub{}
	h := NewHandler(nil, orderStub{details: fixtureDetails()}, newRenderer(t), pdf)
	rec := serve(h, "/invoices/"+uuid.NewString())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "nota-ORD-20240315-0001.pdf")
	assert.Equal(t, "%PDF-1.7", rec.Body.String())
	assert.Contains(t, string(pdf.html), "NOTA LAUNDRY")
}

func TestHandlerErrors(t *testing.T) {
	renderer := newRenderer(t)
	cases := []struct {
		name string
		h    *Handler
		path string
		want int
	}{
		{"bad id", NewHandler(nil, orderStub{}, renderer, &pdfStub{}), "/invoices/nope", http.StatusBadRequest},
		{"missing order", NewHandler(nil, orderStub{err: orders.ErrNotFound}, renderer, &pdfStub{}), "/invoices/" + uuid.NewString(), http.StatusNotFound},
		{"no pdf service", NewHandler(nil, orderStub{details: fixtureDetails()}, renderer, nil), "/invoices/" + uuid.NewString(), http.StatusServiceUnavailable},
		{"pdf unconfigured", NewHandler(nil, orderStub{details: fixtureDetails()}, renderer, NewClient("")), "/invoices/" + uuid.NewString(), http.StatusServiceUnavailable},
		{"pdf failure", NewHandler(nil, orderStub{details: fixtureDetails()}, renderer, &pdfStub{err: errors.New("boom")}), "/invoices/" + uuid.NewString(), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(tc.h, tc.path)
			assert.Equal(t, tc.want, rec.Code)
			assert.Empty(t, rec.Header().Get("Content-Disposition"))
		})
	}
}
