package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"example.com/mastermind/internal/auth"
	"example.com/mastermind/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]store.User
	fail error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]store.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u store.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	for _, x := range f.byID {
		if x.Email == u.Email {
			return store.ErrEmailTaken
		}
	}
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.Email == email {
			return x, nil
		}
	}
	return store.User{}, store.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return store.User{}, store.ErrUserNotFound
	}
	return u, nil
}

type fakeStats struct {
	mu    sync.Mutex
	stats map[string]store.PlayerStats
}

func (f *fakeStats) InitForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stats == nil {
		f.stats = map[string]store.PlayerStats{}
	}
	f.stats[userID] = store.PlayerStats{UserID: userID}
	return nil
}

func (f *fakeStats) Get(_ context.Context, userID string) (store.PlayerStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats[userID], nil
}

type testEnv struct {
	t     *testing.T
	users *fakeUsers
	stats *fakeStats
	ts    *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	authSvc := auth.NewService([]byte("test-secret"))
	env := &testEnv{t: t, users: newFakeUsers(), stats: &fakeStats{}}

	h := &AuthHandler{
		Users:    env.users,
		Stats:    env.stats,
		Auth:     authSvc,
		TokenTTL: time.Hour,
		Log:      zerolog.Nop(),
	}
	r := chi.NewRouter()
	r.Use(RequestLogger(zerolog.Nop()))
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.With(AuthMiddleware(authSvc)).Get("/api/me", h.Me)

	env.ts = httptest.NewServer(r)
	t.Cleanup(env.ts.Close)
	return env
}

func (e *testEnv) do(method, path, token string, body any) (int, []byte) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.ts.URL+path, &buf)
	require.NoError(e.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.ts.Client().Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp.StatusCode, out.Bytes()
}

func TestAuth_RegisterLoginMe(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Email:       "  Alice@Example.com ",
		Password:    "password123",
		DisplayName: "Alice",
	})
	require.Equal(t, http.StatusCreated, code, string(body))

	code, body = env.do(http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.Equal(t, http.StatusOK, code, string(body))
	var login LoginResponse
	require.NoError(t, json.Unmarshal(body, &login))
	require.NotEmpty(t, login.AccessToken)

	code, body = env.do(http.MethodGet, "/api/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	var me MeResponse
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, "alice@example.com", me.Email)
	assert.Equal(t, "Alice", me.DisplayName)
	assert.Equal(t, 0, me.Stats.Solved)
	assert.Equal(t, map[string]int{"brilliant": 0, "good": 0, "improvable": 0, "low": 0}, me.Stats.Tiers)
}

func TestAuth_RegisterErrors(t *testing.T) {
	env := newTestEnv(t)
	ok := RegisterRequest{Email: "bob@example.com", Password: "password123", DisplayName: "Bob"}
	code, _ := env.do(http.MethodPost, "/api/auth/register", "", ok)
	require.Equal(t, http.StatusCreated, code)

	cases := []struct {
		name string
		req  RegisterRequest
		want int
		code string
	}{
		{name: "duplicate email", req: ok, want: http.StatusConflict, code: "email_taken"},
		{name: "bad email", req: RegisterRequest{Email: "bob", Password: "password123", DisplayName: "Bob"}, want: http.StatusBadRequest, code: "bad_request"},
		{name: "short password", req: RegisterRequest{Email: "c@example.com", Password: "short", DisplayName: "C"}, want: http.StatusBadRequest, code: "bad_request"},
		{name: "no name", req: RegisterRequest{Email: "d@example.com", Password: "password123", DisplayName: "   "}, want: http.StatusBadRequest, code: "bad_request"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := env.do(http.MethodPost, "/api/auth/register", "", tc.req)
			require.Equal(t, tc.want, code, string(body))
			var e ErrorResponse
			require.NoError(t, json.Unmarshal(body, &e))
			assert.Equal(t, tc.code, e.Code)
		})
	}

	env.users.mu.Lock()
	env.users.fail = errors.New("db down")
	env.users.mu.Unlock()
	code, _ = env.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{Email: "e@example.com", Password: "password123", DisplayName: "E"})
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestAuth_LoginErrors(t *testing.T) {
	env := newTestEnv(t)
	code, _ := env.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{Email: "bob@example.com", Password: "password123", DisplayName: "Bob"})
	require.Equal(t, http.StatusCreated, code)

	cases := []struct {
		name string
		req  LoginRequest
		want int
	}{
		{name: "wrong password", req: LoginRequest{Email: "bob@example.com", Password: "nope-nope"}, want: http.StatusUnauthorized},
		{name: "unknown user", req: LoginRequest{Email: "who@example.com", Password: "password123"}, want: http.StatusUnauthorized},
		{name: "empty", req: LoginRequest{}, want: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := env.do(http.MethodPost, "/api/auth/login", "", tc.req)
			assert.Equal(t, tc.want, code, string(body))
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)

	code, _ := env.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = env.do(http.MethodGet, "/api/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	// валидный токен, но пользователя нет
	tok, err := auth.NewService([]byte("test-secret")).Sign("ghost", time.Hour)
	require.NoError(t, err)
	code, _ = env.do(http.MethodGet, "/api/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestStatsResponse(t *testing.T) {
	got := statsResponse(store.PlayerStats{
		Solved:        4,
		TotalAttempts: 30,
		BestAttempts:  4,
		Brilliant:     1,
		Good:          2,
		Low:           1,
	})
	assert.Equal(t, 4, got.Solved)
	assert.InDelta(t, 7.5, got.AverageAttempts, 1e-9)
	assert.Equal(t, 4, got.BestAttempts)
	assert.Equal(t, map[string]int{"brilliant": 1, "good": 2, "improvable": 0, "low": 1}, got.Tiers)

	assert.Zero(t, statsResponse(store.PlayerStats{}).AverageAttempts)
}
