package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crucial707/phonebook/internal/auth"
	"github.com/crucial707/phonebook/internal/metrics"
	"github.com/crucial707/phonebook/internal/middleware"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Auth *auth.Service
}

type registerResponse struct {
	User struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// ==========================
// Register
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,max=255"`
		Email    string `json:"email" validate:"required,email,max=254"`
		Password string `json:"password" validate:"required,max=72"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !validateInput(w, input) {
		return
	}

	user, token, err := h.Auth.Register(r.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		metrics.IncAuthEvent("register", outcomeOf(err, auth.ErrDuplicateIdentity, auth.ErrInvalidInput))
		writeServiceError(w, r, err)
		return
	}
	metrics.IncAuthEvent("register", metrics.OutcomeOK)

	var out registerResponse
	out.User.Username = user.Username
	out.User.Email = user.Email
	out.AccessToken = token.AccessToken
	out.TokenType = token.TokenType
	writeJSON(w, out)
}

// ==========================
// Login (JSON body)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if !validateInput(w, input) {
		return
	}

	h.login(w, r, input.Email, input.Password)
}

// ==========================
// Token (OAuth2 password form; username carries the email)
// ==========================
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		JSONError(w, "invalid form", http.StatusBadRequest)
		return
	}
	if gt := r.PostForm.Get("grant_type"); gt != "" && gt != "password" {
		JSONError(w, "unsupported grant_type", http.StatusBadRequest)
		return
	}
	email := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if email == "" || password == "" {
		JSONValidationError(w, "validation failed", map[string]string{"username": "required", "password": "required"}, http.StatusBadRequest)
		return
	}

	h.login(w, r, email, password)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, email, password string) {
	token, err := h.Auth.Login(r.Context(), email, password)
	if err != nil {
		metrics.IncAuthEvent("login", outcomeOf(err, auth.ErrInvalidCredentials))
		writeServiceError(w, r, err)
		return
	}
	metrics.IncAuthEvent("login", metrics.OutcomeOK)
	writeJSON(w, token)
}

// ==========================
// Logout (signature check only; the token stays valid until it expires)
// ==========================
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		metrics.IncAuthEvent("logout", metrics.OutcomeRejected)
		middleware.Unauthorized(w, "not authenticated")
		return
	}
	if err := h.Auth.Logout(r.Context(), token); err != nil {
		metrics.IncAuthEvent("logout", metrics.OutcomeRejected)
		writeServiceError(w, r, err)
		return
	}
	metrics.IncAuthEvent("logout", metrics.OutcomeOK)
	writeJSON(w, MessageResponse{Message: "Logout successful"})
}

// outcomeOf classifies err as rejected when it is one of the expected client errors.
func outcomeOf(err error, expected ...error) string {
	for _, e := range expected {
		if errors.Is(err, e) {
			return metrics.OutcomeRejected
		}
	}
	return metrics.OutcomeError
}
