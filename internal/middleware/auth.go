package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/AbdullaK123/writing-website-backend/internal/auth"
	"github.com/AbdullaK123/writing-website-backend/internal/config"
	"github.com/AbdullaK123/writing-website-backend/internal/model"
)

// SessionCookie is the cookie that carries the opaque session id under
// the session strategy.
const SessionCookie = "session"

// userContextKey is where the resolved user is stashed on the echo
// context for downstream handlers.
const userContextKey = "user"

// IdentityResolver answers "who is calling" from a piece of credential
// evidence.  The auth service implements it; tests substitute fakes.
type IdentityResolver interface {
	ResolveToken(ctx context.Context, raw string) (*model.User, error)
	ResolveSession(ctx context.Context, id string) (*model.User, error)
	ResolveSessionClaims(ctx context.Context, id string) (*model.User, error)
}

// RequireUser is the strict authorization gate: it resolves the caller's
// identity from the configured strategy's credential evidence and fails
// the request with 401 before the wrapped handler runs if the caller is
// anonymous.  The gate answers only "who"; ownership checks belong to
// the resource handlers.
func RequireUser(strategy string, res IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			evidence, ok := credentialEvidence(c, strategy)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
			}

			ctx := c.Request().Context()
			var (
				user *model.User
				err  error
			)
			if strategy == config.StrategySession {
				// The strict variant fetches the user row so current
				// database state wins over whatever the session recorded.
				user, err = res.ResolveSession(ctx, evidence)
			} else {
				user, err = res.ResolveToken(ctx, evidence)
			}
			if errors.Is(err, auth.ErrUnauthorized) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "auth lookup failed"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// LookupUser is the lax variant of the gate: it resolves the identity
// when usable evidence is present and otherwise lets the request through
// anonymously.  Under the session strategy it rehydrates from the session
// claims without touching the database.
func LookupUser(strategy string, res IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			evidence, ok := credentialEvidence(c, strategy)
			if !ok {
				return next(c)
			}

			ctx := c.Request().Context()
			var (
				user *model.User
				err  error
			)
			if strategy == config.StrategySession {
				user, err = res.ResolveSessionClaims(ctx, evidence)
			} else {
				user, err = res.ResolveToken(ctx, evidence)
			}
			if err == nil && user != nil {
				c.Set(userContextKey, user)
			}
			return next(c)
		}
	}
}

// CurrentUser returns the identity resolved by the gate, or nil when the
// request is anonymous.
func CurrentUser(c echo.Context) *model.User {
	if u, ok := c.Get(userContextKey).(*model.User); ok {
		return u
	}
	return nil
}

// credentialEvidence extracts the raw credential from the request: the
// bearer token from the Authorization header under the token strategy,
// or the session cookie value under the session strategy.
func credentialEvidence(c echo.Context, strategy string) (string, bool) {
	if strategy == config.StrategySession {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			return "", false
		}
		return cookie.Value, true
	}
	header := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	return raw, raw != ""
}
