//nolint:errcheck // unchecked errors are acceptable in test files
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/citywide-rp/bankcore/internal/config"
	"github.com/citywide-rp/bankcore/internal/db"
	"github.com/citywide-rp/bankcore/internal/events"
	"github.com/citywide-rp/bankcore/internal/gameworld"
	"github.com/citywide-rp/bankcore/internal/handlers"
	"github.com/citywide-rp/bankcore/internal/heist"
	"github.com/citywide-rp/bankcore/internal/keylock"
	"github.com/citywide-rp/bankcore/internal/repository"
	"github.com/citywide-rp/bankcore/internal/service"
	"github.com/citywide-rp/bankcore/internal/session"
	"github.com/citywide-rp/bankcore/internal/tuning"
)

// TestServer wraps the HTTP test server, database and fake game server for
// integration tests. Requires a reachable PostgreSQL instance; run with
// BANKCORE_INTEGRATION=1.
type TestServer struct {
	Server   *httptest.Server
	Database *db.DB
	Game     *fakeGameServer
	t        *testing.T
}

// fakeGameServer stands in for the game world: it tracks cash on hand per
// actor and answers inventory, roster and position queries.
type fakeGameServer struct {
	mu     sync.Mutex
	cash   map[string]int64
	server *httptest.Server
}

func newFakeGameServer() *fakeGameServer {
	g := &fakeGameServer{cash: make(map[string]int64)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /cash/take", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ActorID     string `json:"actor_id"`
			AmountCents int64  `json:"amount_cents"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		g.mu.Lock()
		defer g.mu.Unlock()
		if g.cash[req.ActorID] < req.AmountCents {
			w.WriteHeader(http.StatusPreconditionFailed)
			json.NewEncoder(w).Encode(map[string]string{"error": "not enough cash"})
			return
		}
		g.cash[req.ActorID] -= req.AmountCents
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /cash/give", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ActorID     string `json:"actor_id"`
			AmountCents int64  `json:"amount_cents"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		g.mu.Lock()
		g.cash[req.ActorID] += req.AmountCents
		g.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /inventory/", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"present": true})
	})
	mux.HandleFunc("POST /inventory/grant", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /roster/online", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]int{"count": 5})
	})
	mux.HandleFunc("GET /world/", func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"within": true})
	})
	mux.HandleFunc("GET /actors/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/actors/")
		json.NewEncoder(w).Encode(map[string]string{"name": name})
	})

	g.server = httptest.NewServer(mux)
	return g
}

// Cash returns the actor's cash on hand tracked by the fake game server.
func (g *fakeGameServer) Cash(actorID string) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cash[actorID]
}

// SetCash seeds the actor's cash on hand.
func (g *fakeGameServer) SetCash(actorID string, amountCents int64) {
	g.mu.Lock()
	g.cash[actorID] = amountCents
	g.mu.Unlock()
}

// SetupTest creates a new test server with a clean database state.
func SetupTest(t *testing.T) *TestServer {
	t.Helper()

	if os.Getenv("BANKCORE_INTEGRATION") == "" {
		t.Skip("set BANKCORE_INTEGRATION=1 to run integration tests")
	}

	cfg, err := config.Load()
	require.NoError(t, err, "failed to load config")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	database, err := db.Connect(context.Background(), &cfg.Database, logger)
	require.NoError(t, err, "failed to connect to database")

	resetTestData(t, database)

	game := newFakeGameServer()
	client := gameworld.NewClient(config.GameConfig{BaseURL: game.server.URL, Timeout: 5 * time.Second})

	tun := tuning.Default()
	guard := session.NewGuard(cfg.App.SessionTTL)
	locks := keylock.New()
	sink := events.NopSink{}

	accountService := service.NewAccountService(database, tun.Economy, logger)
	transactionService := service.NewTransactionService(database, guard, locks, client, sink, tun.Economy, cfg.App.DefaultBranch, logger)
	loanService := service.NewLoanService(database, locks, sink, tun.Economy, logger)
	heistManager := heist.NewManager(
		repository.NewHeistLogRepository(database),
		client, client, client, client,
		sink, tun.Heist, time.Hour, logger,
	)
	require.NoError(t, heistManager.Rebuild(context.Background()))

	handler := handlers.NewHandler(accountService, transactionService, loanService, heistManager, guard, logger)
	router := handlers.NewRouter(handler, database, http.NotFoundHandler(), "", logger)
	server := httptest.NewServer(router)

	return &TestServer{
		Server:   server,
		Database: database,
		Game:     game,
		t:        t,
	}
}

// Close shuts down the test server, fake game server and database connection.
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Game.server.Close()
	_ = ts.Database.Close()
}

// URL returns the full URL for a given path.
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}

func resetTestData(t *testing.T, database *db.DB) {
	t.Helper()

	_, err := database.ExecContext(context.Background(), `
		TRUNCATE TABLE transaction_records CASCADE;
		TRUNCATE TABLE loans CASCADE;
		TRUNCATE TABLE cards CASCADE;
		TRUNCATE TABLE heist_logs CASCADE;
		DELETE FROM accounts;
	`)
	require.NoError(t, err, "failed to reset test data")
}

// PostJSON sends a POST request with a JSON body and decodes the envelope.
func (ts *TestServer) PostJSON(t *testing.T, path string, body map[string]any) (int, map[string]any) {
	t.Helper()

	jsonBody, _ := json.Marshal(body)
	resp, err := http.Post(ts.URL(path), "application/json", bytes.NewReader(jsonBody))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// GetJSON sends a GET request and decodes the envelope.
func (ts *TestServer) GetJSON(t *testing.T, path string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Get(ts.URL(path))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// OpenAccount creates an account and returns its id and clear PIN.
func (ts *TestServer) OpenAccount(t *testing.T, ownerID, accountType string, balanceCents int64) (string, string) {
	t.Helper()

	status, body := ts.PostJSON(t, "/api/v1/accounts", map[string]any{
		"owner_id":              ownerID,
		"type":                  accountType,
		"initial_balance_cents": balanceCents,
	})
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	account := data["account"].(map[string]any)
	return account["id"].(string), data["pin"].(string)
}

// StartSession opens a financial UI session and returns the token.
func (ts *TestServer) StartSession(t *testing.T, accountID string) string {
	t.Helper()

	status, body := ts.PostJSON(t, "/api/v1/accounts/"+accountID+"/sessions", map[string]any{})
	require.Equal(t, http.StatusOK, status)
	return body["data"].(map[string]any)["session_token"].(string)
}
