// Package auth implements the identity side of the service: password-based
// registration and login, password change, and session-token issuance. Every
// store access here is against the users relation, which this package owns.
package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/user/contactdesk-go/apperror"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint
// violations. Two concurrent registrations of the same username can both
// pass the existence check; the users_username_key constraint is the actual
// backstop and the loser is reported as a Conflict via this code.
const pgUniqueViolation = "23505"

// Service is the User Directory contract the HTTP layer depends on.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) (*TokenResponse, error)
}

// AuthService is the pgx-backed Service implementation.
type AuthService struct {
	db     *pgxpool.Pool
	issuer *Issuer
	logger *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(db *pgxpool.Pool, issuer *Issuer, logger *zap.Logger) *AuthService {
	return &AuthService{db: db, issuer: issuer, logger: logger}
}

// Register creates a new user, issues a session token, and persists it.
// A duplicate username yields a Conflict whether it is caught by the
// fast-path existence check or by the unique constraint on insert.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	digest := HashPassword(req.Password)

	// Fast path only; the unique constraint is the ground truth.
	var count int64
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE username = $1`, req.Username).Scan(&count)
	if err != nil {
		s.logger.Error("register: existence check failed", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to register user", err)
	}
	if count > 0 {
		return nil, apperror.NewConflictError("username already exists", nil)
	}

	var userID int64
	err = s.db.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		req.Username, digest,
	).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, apperror.NewConflictError("username already exists", nil)
		}
		s.logger.Error("register: insert failed", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to register user", err)
	}

	return s.issueAndStore(ctx, req.Username, userID)
}

// Login authenticates a username/password pair. Unknown usernames and wrong
// passwords produce the same error, so the endpoint cannot be used to
// enumerate accounts.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	var user User
	err := s.db.QueryRow(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = $1`,
		req.Username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("invalid username or password", nil)
		}
		s.logger.Error("login: user lookup failed", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to log in", err)
	}

	if !VerifyPassword(req.Password, user.PasswordHash) {
		return nil, apperror.NewAuthError("invalid username or password", nil)
	}

	return s.issueAndStore(ctx, user.Username, user.ID)
}

// ChangePassword replaces the caller's password hash and issues a fresh
// token. The previous token is not revoked: it stays cryptographically valid
// until its own expiry, which is a documented property of this design
// rather than an oversight.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) (*TokenResponse, error) {
	var username, storedDigest string
	err := s.db.QueryRow(ctx,
		`SELECT username, password_hash FROM users WHERE id = $1`,
		userID,
	).Scan(&username, &storedDigest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// An authenticated caller whose row is gone behaves the same
			// as one presenting the wrong current password.
			return nil, apperror.NewBadRequestError("incorrect current password", nil)
		}
		s.logger.Error("change password: user lookup failed", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to change password", err)
	}

	if !VerifyPassword(req.CurrentPassword, storedDigest) {
		return nil, apperror.NewBadRequestError("incorrect current password", nil)
	}

	token, err := s.issuer.Issue(username, userID)
	if err != nil {
		s.logger.Error("change password: token issuance failed", zap.Error(err))
		return nil, apperror.NewInternalError("failed to issue token", err)
	}

	_, err = s.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, token = $2 WHERE id = $3`,
		HashPassword(req.NewPassword), token, userID,
	)
	if err != nil {
		s.logger.Error("change password: update failed", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to change password", err)
	}

	return &TokenResponse{Token: token}, nil
}

// issueAndStore signs a token for the user and records it in the
// informational token column.
func (s *AuthService) issueAndStore(ctx context.Context, username string, userID int64) (*TokenResponse, error) {
	token, err := s.issuer.Issue(username, userID)
	if err != nil {
		s.logger.Error("token issuance failed", zap.Error(err))
		return nil, apperror.NewInternalError("failed to issue token", err)
	}

	_, err = s.db.Exec(ctx, `UPDATE users SET token = $1 WHERE id = $2`, token, userID)
	if err != nil {
		s.logger.Error("failed to persist issued token", zap.Error(err))
		return nil, apperror.NewDatabaseError("failed to persist token", err)
	}

	return &TokenResponse{Token: token}, nil
}
