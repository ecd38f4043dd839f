package handler

import (
	"context"  // provides context with cancellation for store calls
	"errors"   // sentinel matching at the service boundary
	"net/http" // HTTP status codes and cookie primitives
	"net/mail" // email syntax validation
	"strings"  // string trimming and normalization
	"time"     // timeouts and cookie max-age
	"unicode/utf8"

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/AbdullaK123/writing-website-backend/internal/auth"       // auth service
	"github.com/AbdullaK123/writing-website-backend/internal/config"     // app configuration
	"github.com/AbdullaK123/writing-website-backend/internal/middleware" // session cookie name, current user
	"github.com/AbdullaK123/writing-website-backend/internal/queue"      // signup event payload
	"github.com/AbdullaK123/writing-website-backend/internal/service/queue_publisher"
)

// Registration policy bounds.  Username length follows the account form;
// the password minimum is the only strength requirement enforced here.
const (
	usernameMinLen = 5
	usernameMaxLen = 100
	passwordMinLen = 7
)

const storeTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg        config.Config
	Auth       *auth.Service
	sessionTTL time.Duration
}

func NewAuthHandler(cfg config.Config, svc *auth.Service) *AuthHandler {
	return &AuthHandler{
		Cfg:        cfg,
		Auth:       svc,
		sessionTTL: time.Duration(cfg.SessionTTLHours) * time.Hour,
	}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
type userResp struct {
	ID        uint64     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	TokenData *tokenData `json:"token_data,omitempty"`
}

// Register: create the user and immediately establish credential
// evidence for them.  The response mirrors login because registration
// implies login.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	username := strings.TrimSpace(req.Username)
	if n := utf8.RuneCountInString(username); n < usernameMinLen || n > usernameMaxLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must be 5-100 characters"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
	}
	if len(req.Password) < passwordMinLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 7 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	res, err := h.Auth.Register(ctx, username, email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateUsername):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a user already exists with that username"})
		case errors.Is(err, auth.ErrDuplicateEmail):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a user already exists with that email"})
		}
		c.Logger().Errorf("register: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}

	// Announce the signup; a down broker must not fail the registration.
	event := queue.UserRegisteredEvent{
		UserID:       res.User.ID,
		Username:     res.User.Username,
		Email:        res.User.Email,
		RegisteredAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), storeTimeout)
		defer pubCancel()
		_ = queue_publisher.PublishUserRegistered(pubCtx, event)
	}()

	return h.respond(c, http.StatusCreated, res)
}

// Login: authenticate by email and establish credential evidence.  The
// error body never says whether the user exists.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	res, err := h.Auth.Login(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		c.Logger().Errorf("login: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	return h.respond(c, http.StatusOK, res)
}

// TokenRefresh: exchange a refresh token for a new access token.  The
// refresh token is echoed back unrotated.
func (h *AuthHandler) TokenRefresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWrongTokenType):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token type"})
		case errors.Is(err, auth.ErrTokenRevoked):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token has been revoked"})
		case errors.Is(err, auth.ErrInvalidToken):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		c.Logger().Errorf("token refresh: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "a database error occurred"})
	}
	return c.JSON(http.StatusOK, tokenData{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// Logout: destroy whatever evidence the caller presented.  Always
// acknowledges success, even for garbage tokens or absent sessions.
func (h *AuthHandler) Logout(c echo.Context) error {
	var sessionID string
	if cookie, err := c.Cookie(middleware.SessionCookie); err == nil {
		sessionID = cookie.Value
	}
	var req refreshReq
	_ = c.Bind(&req) // a missing or invalid body still logs out

	ctx, cancel := context.WithTimeout(c.Request().Context(), storeTimeout)
	defer cancel()

	h.Auth.Logout(ctx, sessionID, strings.TrimSpace(req.RefreshToken))
	if sessionID != "" {
		h.clearSessionCookie(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "successfully logged out"})
}

// Me: return the authenticated caller's public fields.  Runs behind the
// strict gate.
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
	}
	return c.JSON(http.StatusOK, userResp{ID: user.ID, Username: user.Username, Email: user.Email})
}

func (h *AuthHandler) respond(c echo.Context, status int, res *auth.Result) error {
	resp := userResp{ID: res.User.ID, Username: res.User.Username, Email: res.User.Email}
	if res.Tokens != nil {
		resp.TokenData = &tokenData{
			AccessToken:  res.Tokens.AccessToken,
			RefreshToken: res.Tokens.RefreshToken,
			TokenType:    "bearer",
		}
	}
	if res.SessionID != "" {
		h.setSessionCookie(c, res.SessionID)
	}
	return c.JSON(status, resp)
}

func (h *AuthHandler) setSessionCookie(c echo.Context, id string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}
