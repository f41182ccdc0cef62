package gameworld

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citywide-rp/bankcore/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.GameConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 2 * time.Second,
	})
}

func TestClient_TakeCash(t *testing.T) {
	var gotAuth string
	var gotBody cashRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/cash/take", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.TakeCash(context.Background(), "player-1", 60000))
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "player-1", gotBody.ActorID)
	assert.Equal(t, int64(60000), gotBody.AmountCents)
}

func TestClient_TakeCash_Rejected(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPreconditionFailed)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "not enough cash"})
	}))

	err := client.TakeCash(context.Background(), "player-1", 60000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough cash")
}

func TestClient_HasItem(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/inventory/player-1/items/thermal_drill", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]bool{"present": true})
	}))

	present, err := client.HasItem(context.Background(), "player-1", "thermal_drill")
	require.NoError(t, err)
	assert.True(t, present)
}

func TestClient_OnlineWithRole(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/roster/online", r.URL.Path)
		require.Equal(t, "police", r.URL.Query().Get("role"))
		_ = json.NewEncoder(w).Encode(map[string]int{"count": 4})
	}))

	count, err := client.OnlineWithRole(context.Background(), "police")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestClient_DisplayName_FallsBackToID(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		name, err := client.DisplayName(context.Background(), "player-9")
		require.NoError(t, err)
		assert.Equal(t, "player-9", name)
	})

	t.Run("empty name", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{"name": ""})
		}))

		name, err := client.DisplayName(context.Background(), "player-9")
		require.NoError(t, err)
		assert.Equal(t, "player-9", name)
	})

	t.Run("known actor", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/actors/player-9", r.URL.Path)
			_ = json.NewEncoder(w).Encode(map[string]string{"name": "Jordan Bellamy"})
		}))

		name, err := client.DisplayName(context.Background(), "player-9")
		require.NoError(t, err)
		assert.Equal(t, "Jordan Bellamy", name)
	})
}
