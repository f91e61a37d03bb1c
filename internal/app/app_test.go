package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/mastermind/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	var c config.Config
	c.Env = "dev"
	c.HTTP.Addr = "127.0.0.1:0"
	c.HTTP.RequestTimeout = 5 * time.Second
	c.HTTP.ShutdownTimeout = time.Second
	c.Log.Format = "text"
	c.Auth.Secret = "test-secret"
	c.Auth.TokenTTL = time.Hour
	c.Redis.SessionTTL = time.Hour
	c.Game.SweepInterval = time.Minute
	return c
}

// Без Postgres и Redis приложение поднимается на памяти.
func TestNew_InMemory(t *testing.T) {
	a, err := New(context.Background(), testConfig(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	a.Static(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("static"))
	}))

	ts := httptest.NewServer(a.srv.Handler)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))

	resp, err = http.Post(ts.URL+"/api/games", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		GameID string `json:"gameId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Len(t, created.GameID, 10)

	// без БД аккаунтов нет, маршрут ловит только GET статики
	resp, err = http.Post(ts.URL+"/api/auth/login", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/index.html")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := New(context.Background(), testConfig(), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
}
