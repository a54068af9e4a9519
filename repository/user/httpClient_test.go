package userrepo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me", r.URL.Path)
		switch r.Header.Get("Authorization") {
		case "Bearer good-token":
			json.NewEncoder(w).Encode(map[string]any{"id": 3, "email": "reader@senecabooks.local", "is_admin": false})
		case "Bearer admin-token":
			json.NewEncoder(w).Encode(map[string]any{"id": 1, "email": "admin@senecabooks.local", "is_admin": true})
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)

	id, err := repo.Resolve(context.Background(), "good-token")
	require.NoError(t, err)
	require.Equal(t, int64(3), id.ID)
	require.False(t, id.IsAdmin)

	id, err = repo.Resolve(context.Background(), "admin-token")
	require.NoError(t, err)
	require.True(t, id.IsAdmin)

	_, err = repo.Resolve(context.Background(), "expired")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolve_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL).Resolve(context.Background(), "good-token")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestResolve_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewHTTP(srv.URL).Resolve(context.Background(), "good-token")
	require.ErrorIs(t, err, ErrUnavailable)
}
