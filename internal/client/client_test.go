package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/devpulse/internal/repoview"
)

func TestReposPassesFilterParams(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"repos": []any{}, "total_count": 0})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Repos(context.Background(), ReposQuery{
		Criteria: repoview.Criteria{
			Search:   "api",
			Activity: repoview.ActivityActive,
			Status:   repoview.StatusDirty,
			Branch:   "main",
		},
		Sort:    "commits",
		Desc:    true,
		Refresh: true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"search":   "api",
		"activity": "active",
		"status":   "dirty",
		"branch":   "main",
		"sort":     "commits",
		"order":    "desc",
		"refresh":  "true",
	}, gotQuery)
}

func TestExportCSVDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="repos_export_2026-08-26.csv"`)
		_, _ = w.Write([]byte("Name,Path\n"))
	}))
	defer srv.Close()

	data, filename, err := New(srv.URL).ExportCSV(context.Background(), []string{"/r/alpha"})
	require.NoError(t, err)
	assert.Equal(t, "repos_export_2026-08-26.csv", filename)
	assert.Equal(t, "Name,Path\n", string(data))
}

func TestExportCSVEmptySelection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	data, filename, err := New(srv.URL).ExportCSV(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Empty(t, filename)
}

func TestErrorResponsesSurfaceAsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"favorite not found"}`))
	}))
	defer srv.Close()

	err := New(srv.URL).RemoveFavorite(context.Background(), "/r/never")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "favorite not found", apiErr.Message)
}
