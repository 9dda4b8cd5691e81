package auth

import "errors"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

var ErrUnauthenticated = errors.New("sign in required")

// Session is the authenticated caller, resolved once per request from the access token.
// Handlers and commands take it explicitly; there is no ambient current user.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (s Session) Authenticated() bool {
	return s.UserID != ""
}

func (s Session) IsAdmin() bool {
	return s.Authenticated() && s.Role == RoleAdmin
}
