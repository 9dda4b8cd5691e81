package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/api/middleware"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/auth"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/account"
)

const refreshCookiePath = "/auth/refresh"

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	accounts   *account.Service
	jwtService *auth.JWTService
	logger     *zap.Logger
}

func NewAuthHandlers(accounts *account.Service, jwtService *auth.JWTService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		accounts:   accounts,
		jwtService: jwtService,
		logger:     logger.Named("auth"),
	}
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message,omitempty"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func userResponse(p *account.Profile) UserResponse {
	return UserResponse{ID: p.ID, Email: p.Email, Name: p.Name, Role: p.Role, CreatedAt: p.CreatedAt}
}

// SignUp registers a customer and signs them in.
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	profile, err := h.accounts.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.setAuthCookies(w, r, profile); err != nil {
		writeError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, AuthResponse{User: userResponse(profile), Message: "Registration successful"})
}

func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	profile, err := h.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.setAuthCookies(w, r, profile); err != nil {
		writeError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{User: userResponse(profile), Message: "Login successful"})
}

// SignOut revokes the caller's refresh sessions and clears the cookies.
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	if session, ok := middleware.SessionFromContext(r.Context()); ok {
		if err := h.accounts.SignOut(r.Context(), session.UserID); err != nil {
			h.logger.Warn("failed to revoke sessions", zap.String("user_id", session.UserID), zap.Error(err))
		}
	}
	h.clearAuthCookies(w)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Refresh exchanges a refresh token for a new token pair. Each refresh token
// works once.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie("refresh_token")
	if err != nil {
		respondJSONError(w, "No refresh token", http.StatusUnauthorized)
		return
	}
	sessionCookie, err := r.Cookie("session_id")
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "No session", http.StatusUnauthorized)
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(refreshCookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		writeError(w, h.logger, err)
		return
	}

	profile, err := h.accounts.ConsumeSession(r.Context(), sessionCookie.Value, userID, refreshCookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		if errors.Is(err, account.ErrProfileNotFound) {
			err = account.ErrSessionNotFound
		}
		writeError(w, h.logger, err)
		return
	}
	if err := h.setAuthCookies(w, r, profile); err != nil {
		writeError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Token refreshed"})
}

// Me returns the current authenticated user's information
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, auth.ErrUnauthenticated)
		return
	}

	profile, err := h.accounts.Get(r.Context(), session.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, userResponse(profile))
}

// setAuthCookies issues a token pair and records the refresh session.
func (h *AuthHandlers) setAuthCookies(w http.ResponseWriter, r *http.Request, p *account.Profile) error {
	accessToken, accessExpiry, err := h.jwtService.GenerateAccessToken(p.Session())
	if err != nil {
		return err
	}
	sessionID := uuid.New().String()
	refreshToken, refreshExpiry, err := h.jwtService.GenerateRefreshToken(p.ID, sessionID)
	if err != nil {
		return err
	}
	if err := h.accounts.OpenSession(r.Context(), p.ID, sessionID, refreshToken, refreshExpiry, r.RemoteAddr, r.UserAgent()); err != nil {
		return err
	}

	secure := r.TLS != nil
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		Expires:  accessExpiry,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     refreshCookiePath,
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (h *AuthHandlers) clearAuthCookies(w http.ResponseWriter) {
	for _, c := range []struct{ name, path string }{
		{"access_token", "/"},
		{"refresh_token", refreshCookiePath},
		{"session_id", "/"},
	} {
		http.SetCookie(w, &http.Cookie{Name: c.name, Value: "", Path: c.path, MaxAge: -1, HttpOnly: true})
	}
}
