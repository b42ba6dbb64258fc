package web

import (
	"crypto/sha256"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/identity"
	"github.com/qchem/gausscat/internal/logger"
)

const (
	sessionName = "gausscat_session"

	sessionUserID   = "userId"
	sessionUserName = "userName"
	sessionStamp    = "stamp"

	ctxUserKey = "web:user"

	defaultSessionMaxAge = 86400 * 7
)

// sessionKey derives a 32 byte key from the configured secret.
func sessionKey(seed string) []byte {
	sum := sha256.Sum256([]byte(seed))
	return sum[:]
}

// NewSessionStore creates the signed and encrypted cookie store.
func NewSessionStore(s *conf.SecuritySettings) *sessions.CookieStore {
	store := sessions.NewCookieStore(
		sessionKey(s.SessionSecret),
		sessionKey(s.SessionSecret+"encryption"),
	)
	maxAge := s.SessionMaxAge
	if maxAge <= 0 {
		maxAge = defaultSessionMaxAge
	}
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// IsLocalURL reports whether target stays on this site.
func IsLocalURL(target string) bool {
	if target == "" || !strings.HasPrefix(target, "/") {
		return false
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	u, err := url.Parse(target)
	return err == nil && u.Host == "" && u.Scheme == ""
}

func (h *Handler) session(c echo.Context) *sessions.Session {
	// Get returns a fresh session when the cookie cannot be decoded.
	sess, err := h.sessions.Get(c.Request(), sessionName)
	if err != nil {
		h.log.Debug("discarding unreadable session", logger.Error(err))
	}
	return sess
}

// currentUser returns the signed-in user, or nil. Sessions issued before a
// password change are rejected through the security stamp.
func (h *Handler) currentUser(c echo.Context) *entities.User {
	if u, ok := c.Get(ctxUserKey).(*entities.User); ok {
		return u
	}
	sess := h.session(c)
	userID, _ := sess.Values[sessionUserID].(string)
	if userID == "" {
		return nil
	}
	user, err := h.identity.FindUserByID(c.Request().Context(), userID)
	if err != nil {
		return nil
	}
	if stamp, _ := sess.Values[sessionStamp].(string); stamp != user.SecurityStamp {
		return nil
	}
	c.Set(ctxUserKey, user)
	return user
}

// userName returns the name stored in the session without a store lookup.
func (h *Handler) userName(c echo.Context) string {
	if u, ok := c.Get(ctxUserKey).(*entities.User); ok {
		return u.UserName
	}
	name, _ := h.session(c).Values[sessionUserName].(string)
	return name
}

// RequireLogin redirects anonymous visitors to the login page.
func (h *Handler) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.currentUser(c) != nil {
			return next(c)
		}
		target := c.Request().URL.Path
		if c.Request().Method != http.MethodGet {
			target = "/"
		}
		h.log.Debug("login required", logger.String("path", c.Request().URL.Path))
		return c.Redirect(http.StatusSeeOther, "/Account/Login?returnUrl="+url.QueryEscape(target))
	}
}

// LoginForm handles GET /Account/Login.
func (h *Handler) LoginForm(c echo.Context) error {
	returnURL := c.QueryParam("returnUrl")
	if !IsLocalURL(returnURL) {
		returnURL = "/"
	}
	return c.Render(http.StatusOK, "login", LoginViewModel{
		PageData:  h.pageData(c, "Log in"),
		ReturnURL: returnURL,
	})
}

// Login handles POST /Account/Login.
func (h *Handler) Login(c echo.Context) error {
	userName := strings.TrimSpace(c.FormValue("userName"))
	password := c.FormValue("password")
	returnURL := c.FormValue("returnUrl")
	if !IsLocalURL(returnURL) {
		returnURL = "/"
	}

	fail := func(status int, msg string) error {
		return c.Render(status, "login", LoginViewModel{
			PageData:  h.pageData(c, "Log in"),
			UserName:  userName,
			ReturnURL: returnURL,
			Error:     msg,
		})
	}

	ctx := c.Request().Context()
	user, err := h.identity.FindUserByName(ctx, userName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.log.Info("login rejected", logger.String("user", userName), logger.String("ip", c.RealIP()))
			return fail(http.StatusUnauthorized, "Invalid login attempt.")
		}
		return err
	}
	if err := h.identity.CheckPassword(ctx, user, password); err != nil {
		switch {
		case errors.Is(err, identity.ErrLockedOut):
			return fail(http.StatusUnauthorized, "This account has been locked out, please try again later.")
		case errors.Is(err, identity.ErrInvalidCredentials):
			h.log.Info("login rejected", logger.String("user", userName), logger.String("ip", c.RealIP()))
			return fail(http.StatusUnauthorized, "Invalid login attempt.")
		default:
			return err
		}
	}

	sess := h.session(c)
	sess.Values[sessionUserID] = user.ID
	sess.Values[sessionUserName] = user.UserName
	sess.Values[sessionStamp] = user.SecurityStamp
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}

	h.log.Info("user logged in", logger.String("user", user.UserName))
	return c.Redirect(http.StatusSeeOther, returnURL)
}

// Logout handles POST /Account/Logout.
func (h *Handler) Logout(c echo.Context) error {
	sess := h.session(c)
	name, _ := sess.Values[sessionUserName].(string)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	h.log.Info("user logged out", logger.String("user", name))
	return c.Redirect(http.StatusSeeOther, "/")
}
