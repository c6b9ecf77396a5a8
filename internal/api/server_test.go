package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siteatlas/siteatlas/internal/inventory"
	"github.com/siteatlas/siteatlas/internal/storage/memory"
)

func seedStore(t *testing.T, store *memory.Store, id string, urls ...string) inventory.Inventory {
	t.Helper()
	records := make(map[string]inventory.PageRecord, len(urls))
	for _, u := range urls {
		records[u] = inventory.PageRecord{URL: u, LastModified: time.Now().UTC(), Priority: 0.7}
	}
	inv := inventory.Inventory{ID: id, GeneratedAt: time.Now().UTC(), URLs: records}
	require.NoError(t, store.Save(context.Background(), inv))
	return inv
}

func TestHealthz(t *testing.T) {
	srv := NewServer(memory.New(), zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReadyzEmptyStoreIsReady(t *testing.T) {
	srv := NewServer(memory.New(), zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := NewServer(memory.New(), zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestLatestInventory(t *testing.T) {
	store := memory.New()
	srv := NewServer(store, zap.NewNop())

	t.Run("404 before first run", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/inventories/latest", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("returns newest snapshot", func(t *testing.T) {
		seedStore(t, store, "0191a0aa-0001-7000-8000-000000000001", "https://example.com/")
		seedStore(t, store, "0191a0aa-0002-7000-8000-000000000002", "https://example.com/", "https://example.com/docs")

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/inventories/latest", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Inventory inventory.Inventory `json:"inventory"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "0191a0aa-0002-7000-8000-000000000002", body.Inventory.ID)
		require.Len(t, body.Inventory.URLs, 2)
	})
}

func TestLatestSitemap(t *testing.T) {
	store := memory.New()
	seedStore(t, store, "0191a0aa-0001-7000-8000-000000000001", "https://example.com/")
	srv := NewServer(store, zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/inventories/latest/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "<loc>https://example.com/</loc>")
}

func TestLatestChanges(t *testing.T) {
	store := memory.New()
	srv := NewServer(store, zap.NewNop())

	t.Run("404 before first run", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/changes/latest", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("single snapshot reports all urls as new", func(t *testing.T) {
		seedStore(t, store, "0191a0aa-0001-7000-8000-000000000001", "https://example.com/", "https://example.com/a")

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/changes/latest", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Changes inventory.ChangeReport `json:"changes"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Empty(t, body.Changes.PreviousID)
		require.Len(t, body.Changes.NewURLs, 2)
	})

	t.Run("two snapshots diff", func(t *testing.T) {
		seedStore(t, store, "0191a0aa-0002-7000-8000-000000000002", "https://example.com/", "https://example.com/b")

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/changes/latest", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Changes inventory.ChangeReport `json:"changes"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "0191a0aa-0001-7000-8000-000000000001", body.Changes.PreviousID)
		require.Equal(t, []string{"https://example.com/b"}, body.Changes.NewURLs)
		require.Equal(t, []string{"https://example.com/a"}, body.Changes.RemovedURLs)
	})
}
