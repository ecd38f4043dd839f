package auth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AbdullaK123/writing-website-backend/internal/auth"
	"github.com/AbdullaK123/writing-website-backend/internal/config"
	"github.com/AbdullaK123/writing-website-backend/internal/model"
	"github.com/AbdullaK123/writing-website-backend/internal/repository"
	"github.com/AbdullaK123/writing-website-backend/internal/utils"
)

// ----- in-memory fakes -----

type fakeUsers struct {
	mu        sync.Mutex
	seq       uint64
	users     []*model.User
	createErr error // forces Create to fail, simulating a lost insert race
}

func (f *fakeUsers) Create(_ context.Context, username, email, passwordHash string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	for _, u := range f.users {
		if u.Username == username {
			return 0, repository.ErrUsernameExists
		}
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	f.seq++
	now := time.Now().UTC()
	f.users = append(f.users, &model.User{
		ID: f.seq, Username: username, Email: email, PasswordHash: passwordHash,
		CreatedAt: now, UpdatedAt: now,
	})
	return f.seq, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type fakeSessions struct {
	mu   sync.Mutex
	seq  int
	data map[string]model.SessionClaims
}

func (f *fakeSessions) Create(_ context.Context, claims model.SessionClaims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	id := fmt.Sprintf("sess-%d", f.seq)
	f.data[id] = claims
	return id, nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*model.SessionClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claims, ok := f.data[id]
	if !ok {
		return nil, nil
	}
	return &claims, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, id)
	return nil
}

type fakeRefresh struct {
	mu   sync.Mutex
	data map[string]bool
}

func refreshFakeKey(username, token string) string { return username + "|" + token }

func (f *fakeRefresh) Save(_ context.Context, username, token string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[refreshFakeKey(username, token)] = true
	return nil
}

func (f *fakeRefresh) Exists(_ context.Context, username, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[refreshFakeKey(username, token)], nil
}

func (f *fakeRefresh) Delete(_ context.Context, username, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, refreshFakeKey(username, token))
	return nil
}

const testSecret = "test-secret"

func newTestService(strategy string) (*auth.Service, *fakeUsers, *fakeSessions, *fakeRefresh) {
	users := &fakeUsers{}
	sessions := &fakeSessions{data: map[string]model.SessionClaims{}}
	refresh := &fakeRefresh{data: map[string]bool{}}
	svc := auth.New(users, sessions, refresh, auth.Options{
		Strategy:   strategy,
		Secret:     testSecret,
		Algorithm:  "HS256",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	return svc, users, sessions, refresh
}

// ----- registration -----

func TestRegisterIssuesTokenPair(t *testing.T) {
	svc, _, _, refresh := newTestService(config.StrategyToken)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, uint64(1), res.User.ID)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "alice@x.com", res.User.Email)
	assert.NotEqual(t, "password123", res.User.PasswordHash)

	require.NotNil(t, res.Tokens)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)

	claims, err := utils.ParseToken(testSecret, res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, utils.TokenTypeAccess, claims.Type)

	ok, err := refresh.Exists(ctx, "alice", res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.True(t, ok, "refresh token should have a look-aside record")
}

func TestRegisterEstablishesSession(t *testing.T) {
	svc, _, sessions, _ := newTestService(config.StrategySession)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)
	assert.Nil(t, res.Tokens)
	require.NotEmpty(t, res.SessionID)

	claims, err := sessions.Get(ctx, res.SessionID)
	require.NoError(t, err)
	require.NotNil(t, claims)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other@x.com", "password123")
	assert.ErrorIs(t, err, auth.ErrDuplicateUsername)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob_the_second", "alice@x.com", "password123")
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

func TestRegisterLostInsertRaceMapsToDuplicate(t *testing.T) {
	// The pre-checks pass but the insert hits the unique constraint, as
	// happens when two registrations race.  The verdict must still name
	// the colliding field.
	svc, users, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	users.createErr = repository.ErrUsernameExists
	_, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	assert.ErrorIs(t, err, auth.ErrDuplicateUsername)

	users.createErr = repository.ErrEmailExists
	_, err = svc.Register(ctx, "bobby", "bob@x.com", "password123")
	assert.ErrorIs(t, err, auth.ErrDuplicateEmail)
}

// ----- login -----

func TestLoginSuccessResolvesBackToSameUser(t *testing.T) {
	svc, _, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "alice@x.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, res.Tokens)

	user, err := svc.ResolveToken(ctx, res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)
}

func TestLoginWrongPasswordIndistinguishableFromUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	_, errWrongPass := svc.Login(ctx, "alice@x.com", "not-the-password")
	_, errNoUser := svc.Login(ctx, "nobody@x.com", "password123")

	assert.ErrorIs(t, errWrongPass, auth.ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, auth.ErrInvalidCredentials)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestLoginCorruptStoredHash(t *testing.T) {
	svc, users, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	users.users = append(users.users, &model.User{
		ID: 1, Username: "alice", Email: "alice@x.com", PasswordHash: "garbage",
	})

	_, err := svc.Login(ctx, "alice@x.com", "password123")
	assert.ErrorIs(t, err, auth.ErrCorruptHash)
}

// ----- refresh -----

func TestRefreshMintsNewAccessToken(t *testing.T) {
	svc, _, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	// The refresh token is deliberately not rotated.
	assert.Equal(t, res.Tokens.RefreshToken, pair.RefreshToken)

	claims, err := utils.ParseToken(testSecret, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, utils.TokenTypeAccess, claims.Type)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, res.Tokens.AccessToken)
	assert.ErrorIs(t, err, auth.ErrWrongTokenType)
}

func TestRefreshRejectsGarbageAndExpired(t *testing.T) {
	svc, _, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	_, err := svc.Refresh(ctx, "not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	expired, err := utils.NewRefreshToken(testSecret, "HS256", "alice", -time.Minute)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, expired.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestRefreshAfterLogoutIsRevoked(t *testing.T) {
	svc, _, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	svc.Logout(ctx, "", res.Tokens.RefreshToken)

	_, err = svc.Refresh(ctx, res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
}

func TestRefreshValidTokenWithoutRecordIsRevoked(t *testing.T) {
	// A cryptographically valid refresh token whose look-aside record is
	// gone (flushed, expired, or revoked) must not mint access tokens.
	svc, _, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	tok, err := utils.NewRefreshToken(testSecret, "HS256", "alice", time.Hour)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, tok.Token)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
}

// ----- logout -----

func TestLogoutIsIdempotentAndTolerant(t *testing.T) {
	svc, _, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	// None of these may panic or misbehave: garbage token, absent
	// session, repeated logout.
	svc.Logout(ctx, "", "garbage-token")
	svc.Logout(ctx, "no-such-session", "")

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)
	svc.Logout(ctx, "", res.Tokens.RefreshToken)
	svc.Logout(ctx, "", res.Tokens.RefreshToken)
}

func TestLogoutDestroysSession(t *testing.T) {
	svc, _, _, _ := newTestService(config.StrategySession)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	_, err = svc.ResolveSession(ctx, res.SessionID)
	require.NoError(t, err)

	svc.Logout(ctx, res.SessionID, "")

	_, err = svc.ResolveSession(ctx, res.SessionID)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

// ----- identity resolution -----

func TestResolveTokenRejectsRefreshTokenAndUnknownSubject(t *testing.T) {
	svc, _, _, _ := newTestService(config.StrategyToken)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	// A refresh token must not pass the gate.
	_, err = svc.ResolveToken(ctx, res.Tokens.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	// A valid access token for a user that no longer exists is rejected.
	ghost, err := utils.NewAccessToken(testSecret, "HS256", "ghost", time.Minute)
	require.NoError(t, err)
	_, err = svc.ResolveToken(ctx, ghost.Token)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)

	_, err = svc.ResolveToken(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestResolveSessionClaimsSkipsDatabase(t *testing.T) {
	svc, users, _, _ := newTestService(config.StrategySession)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	// Drop the user row; the claims path should still rehydrate while
	// the strict path refuses.
	users.users = nil

	light, err := svc.ResolveSessionClaims(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "alice", light.Username)

	_, err = svc.ResolveSession(ctx, res.SessionID)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}

func TestExpiredSessionResolvesAnonymous(t *testing.T) {
	// TTL expiry in Redis shows up as an absent record.
	svc, _, sessions, _ := newTestService(config.StrategySession)
	ctx := context.Background()

	res, err := svc.Register(ctx, "alice", "alice@x.com", "password123")
	require.NoError(t, err)

	delete(sessions.data, res.SessionID)

	_, err = svc.ResolveSession(ctx, res.SessionID)
	assert.ErrorIs(t, err, auth.ErrUnauthorized)
}
