package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"example.com/mastermind/internal/store"
	"example.com/mastermind/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type Users interface {
	Create(ctx context.Context, u store.User) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByID(ctx context.Context, id string) (store.User, error)
}

type Stats interface {
	InitForUser(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (store.PlayerStats, error)
}

type Signer interface {
	SignWithName(userID, displayName string, ttl time.Duration) (string, error)
}

type AuthHandler struct {
	Users    Users
	Stats    Stats
	Auth     Signer
	TokenTTL time.Duration
	Log      zerolog.Logger
}

var validate = validation.New()

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"displayName" validate:"required,max=40"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

type StatsResponse struct {
	Solved          int            `json:"solved"`
	AverageAttempts float64        `json:"averageAttempts"`
	BestAttempts    int            `json:"bestAttempts"`
	Tiers           map[string]int `json:"tiers"`
}

type MeResponse struct {
	ID          string        `json:"id"`
	Email       string        `json:"email"`
	DisplayName string        `json:"displayName"`
	CreatedAt   time.Time     `json:"createdAt"`
	Stats       StatsResponse `json:"stats"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeValid(w, r, &req, func() {
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		req.DisplayName = strings.TrimSpace(req.DisplayName)
	}) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to hash password")
		return
	}

	userID := uuid.NewString()
	u := store.User{
		ID:           userID,
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
	}

	if err := h.Users.Create(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, http.StatusConflict, codeEmailTaken, "email already exists")
			return
		}
		h.Log.Error().Err(err).Msg("create user")
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to create user")
		return
	}

	// создаём пустую статистику
	if err := h.Stats.InitForUser(r.Context(), userID); err != nil {
		h.Log.Warn().Err(err).Str("user_id", userID).Msg("init stats")
	}

	h.Log.Info().Str("user_id", userID).Msg("user registered")
	w.WriteHeader(http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeValid(w, r, &req, func() {
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	}) {
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			h.Log.Error().Err(err).Msg("load user")
		}
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, codeInvalidCredentials, "invalid email or password")
		return
	}

	token, err := h.Auth.SignWithName(u.ID, u.DisplayName, h.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to sign token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{AccessToken: token})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok || userID == "" {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing auth context")
		return
	}

	u, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "user not found")
		return
	}

	st, err := h.Stats.Get(r.Context(), userID)
	if err != nil {
		h.Log.Error().Err(err).Str("user_id", userID).Msg("load stats")
		writeError(w, http.StatusInternalServerError, codeInternal, "failed to load stats")
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		Stats:       statsResponse(st),
	})
}

func statsResponse(st store.PlayerStats) StatsResponse {
	resp := StatsResponse{
		Solved:       st.Solved,
		BestAttempts: st.BestAttempts,
		Tiers: map[string]int{
			"brilliant":  st.Brilliant,
			"good":       st.Good,
			"improvable": st.Improvable,
			"low":        st.Low,
		},
	}
	if st.Solved > 0 {
		resp.AverageAttempts = float64(st.TotalAttempts) / float64(st.Solved)
	}
	return resp
}
