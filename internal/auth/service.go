// Package auth implements the authentication core: registration, login,
// token refresh, logout and identity resolution.  It is the only
// component that touches both the relational user store and the volatile
// session/token stores.
package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/AbdullaK123/writing-website-backend/internal/config"
	"github.com/AbdullaK123/writing-website-backend/internal/model"
	"github.com/AbdullaK123/writing-website-backend/internal/repository"
	"github.com/AbdullaK123/writing-website-backend/internal/utils"
)

// UserStore is the slice of the user repository the service needs.
type UserStore interface {
	Create(ctx context.Context, username, email, passwordHash string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// SessionStore holds server-side session records keyed by opaque id.
type SessionStore interface {
	Create(ctx context.Context, claims model.SessionClaims) (string, error)
	Get(ctx context.Context, id string) (*model.SessionClaims, error)
	Delete(ctx context.Context, id string) error
}

// RefreshTokenStore holds the look-aside records that gate refresh-token
// reuse.
type RefreshTokenStore interface {
	Save(ctx context.Context, username, token string, ttl time.Duration) error
	Exists(ctx context.Context, username, token string) (bool, error)
	Delete(ctx context.Context, username, token string) error
}

// Options carries the signing and policy knobs the service needs from
// configuration.
type Options struct {
	Strategy   string // config.StrategyToken or config.StrategySession
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

// TokenPair is the bearer credential pair handed to clients under the
// token strategy.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Result is the outcome of a successful registration or login.  Exactly
// one of Tokens or SessionID is populated, depending on the strategy.
type Result struct {
	User      *model.User
	Tokens    *TokenPair
	SessionID string
}

// Service orchestrates the stores and the hasher behind one contract.
type Service struct {
	users    UserStore
	sessions SessionStore
	refresh  RefreshTokenStore
	opts     Options
}

func New(users UserStore, sessions SessionStore, refresh RefreshTokenStore, opts Options) *Service {
	return &Service{users: users, sessions: sessions, refresh: refresh, opts: opts}
}

// Register creates a user and immediately establishes credential
// evidence for them: registration implies login.  Duplicate checks run
// first, but the unique indexes are the real guard — a lost race at
// insert time still reports the right duplicate error.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Result, error) {
	if existing, err := s.users.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicateUsername
	}
	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := utils.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	id, err := s.users.Create(ctx, username, email, hash)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrDuplicateUsername
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user vanished after insert")
	}
	return s.establish(ctx, user)
}

// Login authenticates by email (the canonical login identifier; the
// username is display-only) and establishes credential evidence.  A
// missing user and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	ok, err := utils.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, ErrCorruptHash
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return s.establish(ctx, user)
}

// establish issues credential evidence for an authenticated user using
// the configured strategy.
func (s *Service) establish(ctx context.Context, user *model.User) (*Result, error) {
	res := &Result{User: user}

	if s.opts.Strategy == config.StrategySession {
		id, err := s.sessions.Create(ctx, model.SessionClaims{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
		})
		if err != nil {
			return nil, err
		}
		res.SessionID = id
		return res, nil
	}

	access, err := utils.NewAccessToken(s.opts.Secret, s.opts.Algorithm, user.Username, s.opts.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(s.opts.Secret, s.opts.Algorithm, user.Username, s.opts.RefreshTTL)
	if err != nil {
		return nil, err
	}
	// The look-aside record's TTL matches the token's lifetime, so the
	// record cannot outlive the credential it vouches for.
	if err := s.refresh.Save(ctx, user.Username, refresh.Token, s.opts.RefreshTTL); err != nil {
		return nil, err
	}
	res.Tokens = &TokenPair{AccessToken: access.Token, RefreshToken: refresh.Token}
	return res, nil
}

// Refresh exchanges a valid, un-revoked refresh token for a new access
// token.  The refresh token itself is not rotated: the same token stays
// valid until its own expiry or an explicit logout.  That is a policy
// choice, not an oversight — revocation tracking covers the theft case
// this would otherwise mitigate.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := utils.ParseToken(s.opts.Secret, refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type != utils.TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	ok, err := s.refresh.Exists(ctx, claims.Subject, refreshToken)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenRevoked
	}

	access, err := utils.NewAccessToken(s.opts.Secret, s.opts.Algorithm, claims.Subject, s.opts.AccessTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access.Token, RefreshToken: refreshToken}, nil
}

// Logout destroys whatever credential evidence the caller presented.  It
// always succeeds from the caller's point of view: a garbage token or an
// already-deleted session changes nothing, and store failures are logged
// rather than surfaced.
func (s *Service) Logout(ctx context.Context, sessionID, refreshToken string) {
	if sessionID != "" {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			log.Printf("auth: delete session on logout: %v", err)
		}
	}
	if refreshToken != "" {
		claims, err := utils.ParseToken(s.opts.Secret, refreshToken)
		if err != nil || claims.Subject == "" {
			return
		}
		if err := s.refresh.Delete(ctx, claims.Subject, refreshToken); err != nil {
			log.Printf("auth: delete refresh token on logout: %v", err)
		}
	}
}

// ResolveToken turns a bearer access token into the current user row.
// Any verification failure means the caller is not authenticated; the
// lookup reflects current database state rather than the token payload.
func (s *Service) ResolveToken(ctx context.Context, raw string) (*model.User, error) {
	claims, err := utils.ParseToken(s.opts.Secret, raw)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if claims.Type != utils.TokenTypeAccess || claims.Subject == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// ResolveSession turns a session id into the current user row, fetching
// from the database so revoked or mutated accounts are reflected.  An
// absent or expired record resolves to ErrUnauthorized.
func (s *Service) ResolveSession(ctx context.Context, id string) (*model.User, error) {
	claims, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if claims == nil {
		return nil, ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// ResolveSessionClaims rehydrates a lightweight identity from the session
// record alone, with no database round trip.  The returned user carries
// only the claim fields; code that needs fresh row state should use
// ResolveSession.
func (s *Service) ResolveSessionClaims(ctx context.Context, id string) (*model.User, error) {
	claims, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if claims == nil {
		return nil, ErrUnauthorized
	}
	return &model.User{ID: claims.UserID, Username: claims.Username, Email: claims.Email}, nil
}
