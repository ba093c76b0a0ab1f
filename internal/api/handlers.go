package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"mindbridge.app/companion/internal/auth"
	"mindbridge.app/companion/internal/core"
	"mindbridge.app/companion/internal/resources"
	"mindbridge.app/companion/internal/store"
	"mindbridge.app/companion/internal/wellness"
)

type ctxKey string

const accountIDKey ctxKey = "accountID"

// Authenticator verifies login credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (core.Account, error)
}

type PreferenceReader interface {
	GetPreferences(ctx context.Context, userID int64) (*store.Preferences, error)
}

type APIHandler struct {
	chatService         *core.ChatService
	registrationService *core.RegistrationService
	authenticator       Authenticator
	tokens              *auth.TokenIssuer
	preferences         PreferenceReader
}

func NewAPIHandler(cs *core.ChatService, rs *core.RegistrationService, authenticator Authenticator, tokens *auth.TokenIssuer, prefs PreferenceReader) *APIHandler {
	return &APIHandler{
		chatService:         cs,
		registrationService: rs,
		authenticator:       authenticator,
		tokens:              tokens,
		preferences:         prefs,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		accountID, err := h.tokens.ValidateJWT(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("Rejected token")
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) ResourcesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, resources.Catalog())
}

func (h *APIHandler) RegisterOptionsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, wellness.Options())
}

// RegisterRequest mirrors the registration form.
type RegisterRequest struct {
	Email               string   `json:"email"`
	Password            string   `json:"password"`
	ExerciseFrequency   string   `json:"exerciseFrequency"`
	SleepSchedule       string   `json:"sleepSchedule"`
	StressLevel         string   `json:"stressLevel"`
	Interests           []string `json:"interests"`
	SocialPreference    string   `json:"socialPreference"`
	MeditationFrequency string   `json:"meditationFrequency"`
}

func (req RegisterRequest) form() core.RegistrationForm {
	return core.RegistrationForm{
		Email:    req.Email,
		Password: req.Password,
		Profile: wellness.Profile{
			Email:               req.Email,
			ExerciseFrequency:   req.ExerciseFrequency,
			SleepSchedule:       req.SleepSchedule,
			StressLevel:         req.StressLevel,
			Interests:           req.Interests,
			SocialPreference:    req.SocialPreference,
			MeditationFrequency: req.MeditationFrequency,
		},
	}
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reg, err := h.registrationService.Register(r.Context(), req.form())
	if err != nil {
		if errors.Is(err, core.ErrMissingField) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "Failed to create account")
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	account, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			hlog.FromRequest(r).Error().Err(err).Msg("Error authenticating user")
		}
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.GenerateJWT(account.ID, account.Email)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Int64("account_id", account.ID).Msg("Error generating JWT")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *APIHandler) GetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	accountID := r.Context().Value(accountIDKey).(int64)

	prefs, err := h.preferences.GetPreferences(r.Context(), accountID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Int64("account_id", accountID).Msg("Error loading preferences")
		writeError(w, http.StatusInternalServerError, "Failed to load preferences")
		return
	}
	if prefs == nil {
		writeError(w, http.StatusNotFound, "No preferences stored")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *APIHandler) CreateConversationHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.chatService.StartConversation())
}

func (h *APIHandler) GetConversationHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.chatService.GetConversation(chi.URLParam(r, "conversationID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *APIHandler) DeleteConversationHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.EndConversation(chi.URLParam(r, "conversationID")); err != nil {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

func (h *APIHandler) PostMessageHandler(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	turn, err := h.chatService.PostMessage(r.Context(), conversationID, req.Content)
	switch {
	case errors.Is(err, core.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "Message content cannot be empty")
	case errors.Is(err, core.ErrConversationNotFound):
		writeError(w, http.StatusNotFound, "Conversation not found")
	case errors.Is(err, core.ErrRequestInFlight):
		writeError(w, http.StatusConflict, "A reply is still being generated")
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Str("conversation_id", conversationID).Msg("Error posting message")
		writeError(w, http.StatusInternalServerError, "Failed to post message")
	default:
		writeJSON(w, http.StatusOK, turn)
	}
}
