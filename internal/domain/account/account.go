package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Profile) Session() auth.Session {
	return auth.Session{UserID: p.ID, Email: p.Email, Role: p.Role}
}

// RefreshSession records one issued refresh token by its hash.
type RefreshSession struct {
	ID               string
	UserID           string
	RefreshTokenHash string
	ExpiresAt        time.Time
	CreatedAt        time.Time
	IPAddress        string
	UserAgent        string
}

type Repository interface {
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, id string) (*Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*Profile, error)

	CreateSession(ctx context.Context, s *RefreshSession) error
	GetSession(ctx context.Context, id string) (*RefreshSession, error)
	// DeleteSession returns ErrSessionNotFound when no session was deleted.
	DeleteSession(ctx context.Context, id string) error
	DeleteSessionsByUser(ctx context.Context, userID string) error
}

type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger.Named("account"), now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a customer profile.
func (s *Service) SignUp(ctx context.Context, email, password, name string) (*Profile, error) {
	return s.register(ctx, email, password, name, auth.RoleCustomer)
}

// RegisterAdmin creates an admin profile. The HTTP API never calls it.
func (s *Service) RegisterAdmin(ctx context.Context, email, password, name string) (*Profile, error) {
	return s.register(ctx, email, password, name, auth.RoleAdmin)
}

func (s *Service) register(ctx context.Context, email, password, name, role string) (*Profile, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &Profile{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("profile created", zap.String("user_id", p.ID), zap.String("role", role))
	return p, nil
}

// SignIn checks credentials. Unknown emails and wrong passwords are indistinguishable.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Profile, error) {
	p, err := s.repo.GetProfileByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrProfileNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, p.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !p.IsActive {
		return nil, ErrAccountDeactivated
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	return s.repo.GetProfile(ctx, id)
}

// OpenSession stores the hash of a freshly issued refresh token.
func (s *Service) OpenSession(ctx context.Context, userID, sessionID, refreshToken string, expiresAt time.Time, ip, userAgent string) error {
	return s.repo.CreateSession(ctx, &RefreshSession{
		ID:               sessionID,
		UserID:           userID,
		RefreshTokenHash: auth.HashToken(refreshToken),
		ExpiresAt:        expiresAt,
		CreatedAt:        s.now(),
		IPAddress:        ip,
		UserAgent:        userAgent,
	})
}

// ConsumeSession validates refreshToken against the stored session and deletes
// the session so each refresh token is used at most once. Of concurrent calls
// for one session only the caller whose delete removes the row succeeds.
func (s *Service) ConsumeSession(ctx context.Context, sessionID, userID, refreshToken string) (*Profile, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			s.logger.Warn("refresh token reused concurrently", zap.String("session_id", sessionID), zap.String("user_id", userID))
		}
		return nil, err
	}
	if s.now().After(sess.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	if sess.UserID != userID || sess.RefreshTokenHash != auth.HashToken(refreshToken) {
		s.logger.Warn("refresh token mismatch", zap.String("session_id", sessionID), zap.String("user_id", userID))
		return nil, ErrSessionNotFound
	}

	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrAccountDeactivated
	}
	return p, nil
}

// SignOut revokes every refresh session of userID.
func (s *Service) SignOut(ctx context.Context, userID string) error {
	return s.repo.DeleteSessionsByUser(ctx, userID)
}
