package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// favoritesBackend is a minimal in-memory favorites API for mirror tests.
type favoritesBackend struct {
	mu       sync.Mutex
	favorite map[string]bool
	failNext bool
	// blockAdd, when non-nil, is closed to release a held add request;
	// addStarted is signalled once the request reaches the server.
	blockAdd   chan struct{}
	addStarted chan struct{}
}

func newFavoritesBackend() *favoritesBackend {
	return &favoritesBackend{favorite: map[string]bool{}}
}

func (b *favoritesBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/favorites", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			b.mu.Lock()
			type fav struct {
				RepoPath string `json:"repo_path"`
			}
			payload := struct {
				Favorites []fav `json:"favorites"`
				Count     int   `json:"count"`
			}{Favorites: []fav{}}
			for p, ok := range b.favorite {
				if ok {
					payload.Favorites = append(payload.Favorites, fav{RepoPath: p})
				}
			}
			payload.Count = len(payload.Favorites)
			b.mu.Unlock()
			_ = json.NewEncoder(w).Encode(payload)

		case http.MethodPost:
			if b.addStarted != nil {
				b.addStarted <- struct{}{}
			}
			if b.blockAdd != nil {
				<-b.blockAdd
			}
			b.mu.Lock()
			fail := b.failNext
			b.failNext = false
			b.mu.Unlock()
			if fail {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"store unavailable"}`))
				return
			}
			var req struct {
				RepoPath string `json:"repo_path"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			b.mu.Lock()
			b.favorite[req.RepoPath] = true
			b.mu.Unlock()
			w.WriteHeader(http.StatusCreated)

		case http.MethodDelete:
			b.mu.Lock()
			fail := b.failNext
			b.failNext = false
			if !fail {
				b.favorite[r.URL.Query().Get("path")] = false
			}
			b.mu.Unlock()
			if fail {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"store unavailable"}`))
				return
			}
			w.WriteHeader(http.StatusOK)
		}
	})
	return mux
}

func testMirror(t *testing.T, backend *favoritesBackend) *FavoritesMirror {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFavoritesMirror(New(srv.URL), logger)
}

func TestFetchPopulatesMirror(t *testing.T) {
	backend := newFavoritesBackend()
	backend.favorite["/r/alpha"] = true
	m := testMirror(t, backend)

	m.Fetch(context.Background())
	assert.True(t, m.IsFavorite("/r/alpha"))
	assert.False(t, m.IsFavorite("/r/beta"))
}

func TestFetchFailureLeavesEmptyMirror(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewFavoritesMirror(New(srv.URL), logger)

	m.Fetch(context.Background())
	assert.Empty(t, m.Paths())
	assert.False(t, m.IsFavorite("/r/alpha"))
}

func TestToggleOptimisticSuccess(t *testing.T) {
	backend := newFavoritesBackend()
	m := testMirror(t, backend)
	ctx := context.Background()

	assert.True(t, m.Toggle(ctx, "/r/alpha", "alpha"))
	assert.True(t, m.IsFavorite("/r/alpha"))
	assert.True(t, backend.favorite["/r/alpha"])

	assert.False(t, m.Toggle(ctx, "/r/alpha", "alpha"))
	assert.False(t, m.IsFavorite("/r/alpha"))
	assert.False(t, backend.favorite["/r/alpha"])
}

func TestToggleRollsBackOnFailure(t *testing.T) {
	backend := newFavoritesBackend()
	backend.failNext = true
	m := testMirror(t, backend)

	got := m.Toggle(context.Background(), "/r/alpha", "alpha")
	assert.False(t, got, "failed add rolls the optimistic flip back")
	assert.False(t, m.IsFavorite("/r/alpha"))
}

func TestStaleFailureDoesNotOverrideNewerToggle(t *testing.T) {
	backend := newFavoritesBackend()
	backend.failNext = true
	backend.blockAdd = make(chan struct{})
	backend.addStarted = make(chan struct{}, 1)
	m := testMirror(t, backend)
	ctx := context.Background()

	// First toggle: the add request is held at the server and will fail.
	done := make(chan bool)
	go func() {
		done <- m.Toggle(ctx, "/r/alpha", "alpha")
	}()
	<-backend.addStarted

	// A newer toggle for the same path lands while the first is in flight.
	m.mu.Lock()
	m.favorites["/r/alpha"] = true
	m.versions["/r/alpha"]++
	m.mu.Unlock()

	close(backend.blockAdd)
	<-done

	assert.True(t, m.IsFavorite("/r/alpha"), "stale rollback must not clobber the newer state")
}
