package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ValidateRequest carries a password to check against the current user
type ValidateRequest struct {
	Password string `json:"password"`
}

// ValidateResponse reports whether the password matched
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// TokenResponse exposes the cached bearer token of the current user
type TokenResponse struct {
	Token string `json:"token"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns 503 when the token cache backend is unreachable
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		if err := s.cache.Ping(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "token cache not ready", "error", err)
			writeError(w, http.StatusServiceUnavailable, "token cache unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

// handleSwagger serves the registered OpenAPI document
func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}

// Auth endpoints

// handleLogin godoc
// @Summary      Password login
// @Description  Exchanges email and password at the identity service and starts a session
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      502      {object}  ErrorResponse  "Identity service unavailable"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := s.users.RetrieveByCredentials(r.Context(), req.Credentials())
	if !s.finishLogin(w, r, user, err) {
		return
	}

	if req.Remember {
		s.rememberUser(r, user)
	}

	writeJSON(w, http.StatusOK, user)
}

// handleEmailLogin godoc
// @Summary      Email-only login
// @Description  Authorizes with the email-only grant; extra fields are forwarded to the identity service
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      map[string]string  true  "Credentials, email required"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      502      {object}  ErrorResponse  "Identity service unavailable"
// @Router       /auth/login/email [post]
func (s *Server) handleEmailLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.Email() == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := s.users.RetrieveByEmailOnly(r.Context(), creds)
	if !s.finishLogin(w, r, user, err) {
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// finishLogin writes the failure response and reports whether the login succeeded
func (s *Server) finishLogin(w http.ResponseWriter, r *http.Request, user *domain.UserRecord, err error) bool {
	if err != nil {
		s.logger.ErrorContext(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusBadGateway, "identity service unavailable")
		return false
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return false
	}
	return true
}

// rememberUser rotates the remember token and queues the remember cookie.
// The cookie is only issued when the identity service confirmed the token.
func (s *Server) rememberUser(r *http.Request, user *domain.UserRecord) {
	token, err := newRememberToken()
	if err != nil {
		s.logger.WarnContext(r.Context(), "failed to generate remember token", "error", err)
		return
	}

	if result := s.users.UpdateRememberToken(r.Context(), user, token); !result.OK() {
		return
	}

	s.cookies.Queue(r.Context(), domain.RememberCookieName,
		domain.RememberCookieValue(user.AuthIdentifier(), token), domain.RememberTTL)
}

// handleLogout godoc
// @Summary      Logout
// @Description  Clears the session cookies and drops the cached bearer token
// @Tags         Authentication
// @Success      204
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if id := s.sessionUserID(r); id != "" {
		if err := s.users.ForgetToken(r.Context(), id); err != nil {
			s.logger.WarnContext(r.Context(), "failed to drop cached token", "user_id", id, "error", err)
		}
	}

	s.cookies.Forget(r.Context(), domain.StoreCookieName)
	s.cookies.Forget(r.Context(), domain.RememberCookieName)
	w.WriteHeader(http.StatusNoContent)
}

// sessionUserID reads the user id from the store cookie, then the remember cookie
func (s *Server) sessionUserID(r *http.Request) string {
	if id, err := s.cookies.readSignedCookie(r, domain.StoreCookieName); err == nil && id != "" {
		return id
	}
	if value, err := s.cookies.readSignedCookie(r, domain.RememberCookieName); err == nil {
		if id, _, ok := domain.ParseRememberCookie(value); ok {
			return id
		}
	}
	return ""
}

// Session endpoints

// handleGetMe godoc
// @Summary      Current user
// @Description  Returns the user resolved from the session cookies
// @Tags         Users
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Router       /me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GetUser(r.Context()))
}

// handleGetToken godoc
// @Summary      Cached bearer token
// @Description  Returns the identity service token cached at the current user's last login.
// @Description  Mounted only when Config.ExposeToken is set. The response is marked no-store.
// @Tags         Authentication
// @Produce      json
// @Success      200  {object}  TokenResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse  "No token cached"
// @Router       /auth/token [get]
func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	user := GetUser(r.Context())

	token, err := s.users.CachedToken(r.Context(), user.AuthIdentifier())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "no token cached")
		default:
			s.logger.ErrorContext(r.Context(), "token cache read failed", "error", err)
			writeError(w, http.StatusInternalServerError, "token cache unavailable")
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, TokenResponse{Token: token.String()})
}

// handleValidate godoc
// @Summary      Confirm password
// @Description  Checks a password against the current user's stored hash
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      ValidateRequest  true  "Password"
// @Success      200      {object}  ValidateResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /auth/validate [post]
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid := s.users.ValidateCredentials(GetUser(r.Context()), domain.Credentials{"password": req.Password})
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: valid})
}

// newRememberToken returns 60 random hex characters
func newRememberToken() (string, error) {
	b := make([]byte, 30)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
