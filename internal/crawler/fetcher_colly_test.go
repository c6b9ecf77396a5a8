package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCollyFetcher(t *testing.T) *CollyFetcher {
	t.Helper()
	f, err := NewCollyFetcher(Config{
		Concurrency:  4,
		FetchTimeout: 5 * time.Second,
		UserAgent:    "siteatlas-test/1.0",
	}, zap.NewNop())
	require.NoError(t, err)
	return f
}

func TestCollyFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Write([]byte(`<html><body><a href="/about">about</a></body></html>`))
		case "/missing":
			http.NotFound(w, r)
		default:
			w.Write([]byte("<html></html>"))
		}
	}))
	defer srv.Close()

	f := newTestCollyFetcher(t)

	t.Run("returns body and status", func(t *testing.T) {
		page, err := f.Fetch(context.Background(), srv.URL+"/")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, page.StatusCode)
		require.Contains(t, string(page.Body), "/about")
	})

	t.Run("non-success status is an error", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), srv.URL+"/missing")
		require.Error(t, err)
	})

	t.Run("unreachable host is an error", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/")
		require.Error(t, err)
	})
}

func TestCollyFetcherSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := newTestCollyFetcher(t)
	_, err := f.Fetch(context.Background(), srv.URL+"/")
	require.NoError(t, err)
	require.Equal(t, "siteatlas-test/1.0", gotUA)
}

func TestCollyFetcherHonorsContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := newTestCollyFetcher(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, srv.URL+"/")
	require.Error(t, err)
}
