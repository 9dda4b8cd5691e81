package store

import (
	"context"

	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/domain/account"
)

const profileColumns = `id, email, name, role, password_hash, is_active, created_at, updated_at`

func (s *PostgresStore) CreateProfile(ctx context.Context, p *account.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Email, p.Name, p.Role, p.PasswordHash, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if uniqueViolation(err, "profiles_email_key") {
		return account.ErrEmailTaken
	}
	return err
}

func (s *PostgresStore) GetProfile(ctx context.Context, id string) (*account.Profile, error) {
	return s.getProfileWhere(ctx, "id = $1", id)
}

func (s *PostgresStore) GetProfileByEmail(ctx context.Context, email string) (*account.Profile, error) {
	return s.getProfileWhere(ctx, "email = $1", email)
}

func (s *PostgresStore) getProfileWhere(ctx context.Context, where string, arg any) (*account.Profile, error) {
	var p account.Profile
	err := s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE `+where, arg).Scan(
		&p.ID, &p.Email, &p.Name, &p.Role, &p.PasswordHash, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if missing(err) {
		return nil, account.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, rs *account.RefreshSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (id, user_id, refresh_token_hash, expires_at, created_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rs.ID, rs.UserID, rs.RefreshTokenHash, rs.ExpiresAt, rs.CreatedAt, rs.IPAddress, rs.UserAgent)
	return err
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*account.RefreshSession, error) {
	var rs account.RefreshSession
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, refresh_token_hash, expires_at, created_at, ip_address, user_agent
		FROM refresh_sessions WHERE id = $1
	`, id).Scan(&rs.ID, &rs.UserID, &rs.RefreshTokenHash, &rs.ExpiresAt, &rs.CreatedAt, &rs.IPAddress, &rs.UserAgent)
	if missing(err) {
		return nil, account.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rs, nil
}

func (s *PostgresStore) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE id = $1`, id)
	if missing(err) {
		return account.ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return account.ErrSessionNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteSessionsByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE user_id = $1`, userID)
	return err
}
