// HTTP handlers for device register + login (public endpoints — no AuthMiddleware).
// Translates HTTP requests into domain/auth.Service calls and maps domain
// errors to HTTP codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domainauth "github.com/rafaelgorayb/barduino/internal/domain/auth"
)

// AuthHandler handles device authentication HTTP requests.
type AuthHandler struct {
	authService domainauth.Service
}

// NewAuthHandler creates a new AuthHandler backed by the provided Service.
func NewAuthHandler(authService domainauth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest is the request body for POST /auth/register.
type RegisterRequest struct {
	Name      string `json:"name"`
	DeviceKey string `json:"deviceKey"`
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	DeviceID  string `json:"deviceId"`
	DeviceKey string `json:"deviceKey"`
}

// AuthResponse is returned after successful register or login.
type AuthResponse struct {
	Token    string `json:"token"`
	DeviceID string `json:"deviceId"`
}

// Register handles POST /auth/register.
//
// Response codes:
//   - 201 Created: device enrolled
//   - 400 Bad Request: invalid JSON or missing fields
//   - 500 Internal Server Error: unexpected failure
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.authService.Register(r.Context(), domainauth.RegisterInput{
		Name: req.Name,
		Key:  req.DeviceKey,
	})
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "name and deviceKey are required")
			return
		}
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{Token: result.Token, DeviceID: result.DeviceID})
}

// Login handles POST /auth/login.
//
// Response codes:
//   - 200 OK: login successful
//   - 400 Bad Request: invalid JSON or missing fields
//   - 401 Unauthorized: invalid credentials (generic — never reveals which part was wrong)
//   - 500 Internal Server Error: unexpected failure
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DeviceID == "" || req.DeviceKey == "" {
		writeError(w, http.StatusBadRequest, "deviceId and deviceKey are required")
		return
	}

	result, err := h.authService.Login(r.Context(), domainauth.LoginInput{
		DeviceID: req.DeviceID,
		Key:      req.DeviceKey,
	})
	if err != nil {
		if errors.Is(err, domainauth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: result.Token, DeviceID: result.DeviceID})
}
