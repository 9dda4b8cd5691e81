package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/auth"
)

const accessTokenCookie = "access_token"

func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken returns the access token carried by r. The session cookie set
// at sign-in wins over a bearer header.
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		return cookie.Value
	}
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// sessionFromRequest resolves the access token on r into the caller's session.
func sessionFromRequest(jwtService *auth.JWTService, r *http.Request) (auth.Session, error) {
	token := ExtractToken(r)
	if token == "" {
		return auth.Session{}, auth.ErrUnauthenticated
	}
	claims, err := jwtService.ValidateAccessToken(token)
	if err != nil {
		return auth.Session{}, err
	}
	return claims.Session(), nil
}

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// AuthMiddleware answers 401 unless the request carries a valid access token.
func AuthMiddleware(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessionFromRequest(jwtService, r)
			if err != nil {
				respondError(w, err.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// OptionalAuthMiddleware attaches the session when the token is valid and
// otherwise lets the request through as anonymous.
func OptionalAuthMiddleware(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session, err := sessionFromRequest(jwtService, r); err == nil {
				r = r.WithContext(WithSession(r.Context(), session))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole must run after AuthMiddleware. Sessions outside roles get 403.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				respondError(w, auth.ErrUnauthenticated.Error(), http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if session.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, "forbidden", http.StatusForbidden)
		})
	}
}

// SessionFromContext reports the authenticated session on ctx, if any.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(auth.Session)
	return s, ok && s.Authenticated()
}

// Session is SessionFromContext without the flag; anonymous callers get the zero Session.
func Session(ctx context.Context) auth.Session {
	s, _ := SessionFromContext(ctx)
	return s
}
