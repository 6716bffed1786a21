package shared

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 35)
	require.Equal(t, 4, p.TotalPages)
	require.Equal(t, 10, p.Offset())

	p = NewPagination(0, 0, 0)
	require.Equal(t, 1, p.Page)
	require.Equal(t, defaultPerPage, p.PerPage)
	require.Equal(t, 0, p.TotalPages)
}

func TestPageFromQueryClamps(t *testing.T) {
	page, perPage := PageFromQuery(url.Values{"page": {"-3"}, "per_page": {"5000"}})
	require.Equal(t, 1, page)
	require.Equal(t, maxPerPage, perPage)
}

func TestActorFromContextDefaultsToSystem(t *testing.T) {
	require.Equal(t, "system", ActorFromContext(t.Context()))
	ctx := ContextWithActor(t.Context(), "admin@laundry.local")
	require.Equal(t, "admin@laundry.local", ActorFromContext(ctx))
}
