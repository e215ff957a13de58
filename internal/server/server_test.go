package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedamineameur/renderback/internal/model"
	"github.com/mohamedamineameur/renderback/internal/repository/database"
	"github.com/mohamedamineameur/renderback/internal/server"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestServer returns an initialised server over a fresh in-memory database.
func newTestServer(t *testing.T) (*server.Server, *database.DB) {
	t.Helper()
	db, err := database.Open(database.Config{Driver: database.SQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv, err := server.New(server.Config{Port: 0, MetricsEnabled: true}, db, testLogger())
	require.NoError(t, err)
	srv.InitDatabase(context.Background())
	return srv, db
}

func request(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func names(t *testing.T, rr *httptest.ResponseRecorder) []string {
	t.Helper()
	var records []model.Record
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&records))
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestInitDatabase_SeedsDefaultCouleurs(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := request(t, srv.Handler(), http.MethodGet, "/couleurs", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.ElementsMatch(t,
		[]string{"Rouge", "Vert", "Bleu", "Jaune", "Noir", "Blanc"},
		names(t, rr))
}

func TestInitDatabase_IsIdempotent(t *testing.T) {
	srv, _ := newTestServer(t)

	srv.InitDatabase(context.Background())
	srv.InitDatabase(context.Background())

	rr := request(t, srv.Handler(), http.MethodGet, "/couleurs", "")
	assert.Len(t, names(t, rr), 6)
}

func TestInitDatabase_DoesNotReseedAfterUserDeletes(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	var seeded []model.Record
	require.NoError(t, json.NewDecoder(request(t, h, http.MethodGet, "/couleurs", "").Body).Decode(&seeded))
	for _, r := range seeded[1:] {
		require.Equal(t, http.StatusNoContent, request(t, h, http.MethodDelete, "/couleurs/"+r.ID, "").Code)
	}

	srv.InitDatabase(context.Background())

	assert.Len(t, names(t, request(t, h, http.MethodGet, "/couleurs", "")), 1)
}

func TestInitDatabase_UnreachableDatabaseIsNotFatal(t *testing.T) {
	db, err := database.Open(database.Config{
		Driver: database.Postgres, Host: "127.0.0.1", Port: 1,
		Name: "x", User: "x", SSLMode: "disable", ConnectTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv, err := server.New(server.Config{}, db, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.InitDatabase(ctx)

	// Requests still get an answer, carrying the driver's error.
	rr := request(t, srv.Handler(), http.MethodGet, "/livres", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLivres_Lifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rr := request(t, h, http.MethodGet, "/livres", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = request(t, h, http.MethodPost, "/livres", `{"name":"Le Petit Prince"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var livre model.Record
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&livre))
	assert.Equal(t, "Le Petit Prince", livre.Name)

	assert.Equal(t, []string{"Le Petit Prince"}, names(t, request(t, h, http.MethodGet, "/livres", "")))

	rr = request(t, h, http.MethodDelete, "/livres/"+livre.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = request(t, h, http.MethodDelete, "/livres/"+livre.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Livre not found"}`, rr.Body.String())
}

func TestLivres_MissingName(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := request(t, srv.Handler(), http.MethodPost, "/livres", `{}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Livre.name cannot be null"}`, rr.Body.String())
}

func TestLivres_NoGetOrUpdateByID(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rr := request(t, h, http.MethodPost, "/livres", `{"name":"Candide"}`)
	var livre model.Record
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&livre))

	assert.Equal(t, http.StatusMethodNotAllowed, request(t, h, http.MethodGet, "/livres/"+livre.ID, "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, request(t, h, http.MethodPut, "/livres/"+livre.ID, `{"name":"x"}`).Code)
}

func TestCouleurs_Lifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	rr := request(t, h, http.MethodPost, "/couleurs", `{"name":"Orange"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created model.Record
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&created))

	rr = request(t, h, http.MethodPut, "/couleurs/"+created.ID, `{"name":"Violet"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = request(t, h, http.MethodGet, "/couleurs/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var fetched model.Record
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&fetched))
	assert.Equal(t, "Violet", fetched.Name)
	assert.Equal(t, created.ID, fetched.ID)

	assert.Len(t, names(t, request(t, h, http.MethodGet, "/couleurs", "")), 7)

	assert.Equal(t, http.StatusNoContent, request(t, h, http.MethodDelete, "/couleurs/"+created.ID, "").Code)
	rr = request(t, h, http.MethodGet, "/couleurs/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Couleur not found"}`, rr.Body.String())
}

func TestCORS_AllowsAnyOrigin(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodGet, "/couleurs", nil)
	req.Header.Set("Origin", "https://example.org")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/couleurs/abc", nil)
	preflight.Header.Set("Origin", "https://example.org")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, preflight)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	request(t, h, http.MethodGet, "/couleurs", "")

	rr := request(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `records_seeded_total{entity="Couleur"} 6`), body)
	assert.Contains(t, body, `http_requests_total{method="GET",route="/couleurs",status="200"} 1`)
	assert.Contains(t, body, "go_sql_open_connections")
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	db, err := database.Open(database.Config{Driver: database.SQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv, err := server.New(server.Config{}, db, testLogger())
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, request(t, srv.Handler(), http.MethodGet, "/metrics", "").Code)
}
