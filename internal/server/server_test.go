package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"cetpaper/internal/config"
	"cetpaper/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "cetpaper.db"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	return NewServer(cfg, st, nil)
}

func TestServer_Routes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	cases := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/status", http.StatusOK},
		{http.MethodGet, "/api/v1/papers", http.StatusOK},
		{http.MethodOptions, "/api/papers", http.StatusNoContent},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.want {
			t.Fatalf("%s %s status=%d want %d", tc.method, tc.path, w.Code, tc.want)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); tc.path != "/healthz" && tc.path != "/nope" && got != "*" {
			t.Fatalf("%s missing CORS header", tc.path)
		}
	}
}
