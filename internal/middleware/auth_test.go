package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdullaK123/writing-website-backend/internal/auth"
	"github.com/AbdullaK123/writing-website-backend/internal/config"
	"github.com/AbdullaK123/writing-website-backend/internal/middleware"
	"github.com/AbdullaK123/writing-website-backend/internal/model"
)

// fakeResolver recognizes exactly one credential per kind and rejects
// everything else as anonymous.
type fakeResolver struct {
	token     string
	sessionID string
	user      model.User
}

func (f *fakeResolver) ResolveToken(_ context.Context, raw string) (*model.User, error) {
	if raw == f.token {
		u := f.user
		return &u, nil
	}
	return nil, auth.ErrUnauthorized
}

func (f *fakeResolver) ResolveSession(_ context.Context, id string) (*model.User, error) {
	if id == f.sessionID {
		u := f.user
		return &u, nil
	}
	return nil, auth.ErrUnauthorized
}

func (f *fakeResolver) ResolveSessionClaims(ctx context.Context, id string) (*model.User, error) {
	return f.ResolveSession(ctx, id)
}

func newResolver() *fakeResolver {
	return &fakeResolver{
		token:     "good-token",
		sessionID: "good-session",
		user:      model.User{ID: 7, Username: "alice", Email: "alice@x.com"},
	}
}

// whoami echoes the gate's verdict so tests can see it.
func whoami(c echo.Context) error {
	if u := middleware.CurrentUser(c); u != nil {
		return c.JSON(http.StatusOK, echo.Map{"username": u.Username})
	}
	return c.JSON(http.StatusOK, echo.Map{"username": ""})
}

func runGate(t *testing.T, mw echo.MiddlewareFunc, build func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/whoami", whoami, mw)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if build != nil {
		build(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireUserTokenStrategy(t *testing.T) {
	gate := middleware.RequireUser(config.StrategyToken, newResolver())

	rec := runGate(t, gate, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no header")

	rec = runGate(t, gate, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer bad-token")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "unknown token")

	rec = runGate(t, gate, func(r *http.Request) {
		r.Header.Set("Authorization", "good-token")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing Bearer prefix")

	rec = runGate(t, gate, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer good-token")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestRequireUserSessionStrategy(t *testing.T) {
	gate := middleware.RequireUser(config.StrategySession, newResolver())

	rec := runGate(t, gate, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no cookie")

	rec = runGate(t, gate, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "stale-session"})
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "unknown session")

	rec = runGate(t, gate, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "good-session"})
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestRequireUserIgnoresOtherStrategyEvidence(t *testing.T) {
	// A session cookie is not evidence under the token strategy.
	gate := middleware.RequireUser(config.StrategyToken, newResolver())

	rec := runGate(t, gate, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "good-session"})
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLookupUserAllowsAnonymous(t *testing.T) {
	lookup := middleware.LookupUser(config.StrategyToken, newResolver())

	rec := runGate(t, lookup, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":""`)

	// Bad evidence degrades to anonymous rather than failing.
	rec = runGate(t, lookup, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer bad-token")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":""`)

	rec = runGate(t, lookup, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer good-token")
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestLookupUserSessionUsesClaims(t *testing.T) {
	lookup := middleware.LookupUser(config.StrategySession, newResolver())

	rec := runGate(t, lookup, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "good-session"})
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}
