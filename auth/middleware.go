package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TokenCookieName is the cookie carrying the bearer token.
const TokenCookieName = "token"

// AccountContextKey is the fiber locals key the guards attach the resolved
// account under.
const AccountContextKey = "account"

// notFoundPage is the generic body every concealed-guard failure returns.
// It must stay byte-identical across failure causes so an observer cannot
// distinguish "unauthorized" from "no such route".
const notFoundPage = "<!DOCTYPE html><html><head><title>404 Not Found</title></head><body><h1>404 - Page Not Found</h1></body></html>"

// Guard gates protected routes: it extracts a token, verifies it, enforces
// the idle window and attaches the resolved account to the request.
type Guard struct {
	tokens     *TokenService
	sessions   *ActivityTracker
	users      UserStore
	idleWindow time.Duration
	secure     bool // set Secure on issued cookies (production)
	log        *zap.Logger
}

// NewGuard creates a guard. A zero idleWindow falls back to the default
// 30 minute window.
func NewGuard(tokens *TokenService, sessions *ActivityTracker, users UserStore, idleWindow time.Duration, secure bool, log *zap.Logger) *Guard {
	if idleWindow == 0 {
		idleWindow = DefaultIdleWindow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{
		tokens:     tokens,
		sessions:   sessions,
		users:      users,
		idleWindow: idleWindow,
		secure:     secure,
		log:        log,
	}
}

// extractToken pulls the bearer token out of the request, checking the cookie
// first, then the Authorization header, then (when allowed) the token query
// parameter. The query fallback exists so download-style GET requests can
// authenticate without custom headers.
func extractToken(c *fiber.Ctx, allowQuery bool) string {
	if token := c.Cookies(TokenCookieName); token != "" {
		return token
	}
	if header := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if allowQuery {
		return c.Query(TokenCookieName)
	}
	return ""
}

// authenticate runs the shared verification pipeline: token verify, idle
// check, activity touch, account load. No side effect happens before the
// token verifies.
func (g *Guard) authenticate(c *fiber.Ctx, allowQuery bool) (*Account, *AuthError) {
	token := extractToken(c, allowQuery)
	if token == "" {
		return nil, ErrNoToken
	}

	subjectID, err := g.tokens.Verify(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	if g.sessions.IsExpired(subjectID, g.idleWindow, time.Now()) {
		g.sessions.Clear(subjectID)
		return nil, ErrSessionIdleExpired
	}
	g.sessions.Touch(subjectID)

	acc, lookupErr := g.users.FindByID(c.Context(), subjectID)
	if lookupErr != nil {
		return nil, ErrAccountMissing
	}

	return acc, nil
}

// Protect is the ordinary guard. Failures are distinguishable 401 responses
// so legitimate users can recover.
func (g *Guard) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		acc, authErr := g.authenticate(c, true)
		if authErr != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": authErr.Message,
			})
		}

		c.Locals(AccountContextKey, acc)
		return c.Next()
	}
}

// Admin is a role check layered on Protect. Non-admins get a 404 so the
// response does not confirm that an admin surface exists.
func (g *Guard) Admin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		acc, ok := AccountFromCtx(c)
		if !ok || !acc.IsAdmin() {
			return c.Status(ErrRoleDenied.Code).JSON(fiber.Map{
				"message": ErrRoleDenied.Message,
			})
		}
		return c.Next()
	}
}

// StrictAdmin is the concealed guard for critical admin routes. It skips the
// query-parameter token fallback and collapses every failure cause, including
// an insufficient role, into one identical 404 page. Collapsing the reasons is
// deliberate; keep the error path special-cased rather than folding it into a
// shared handler that leaks distinctions.
func (g *Guard) StrictAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		acc, authErr := g.authenticate(c, false)
		if authErr != nil || !acc.IsAdmin() {
			if authErr != nil {
				g.log.Debug("concealed guard rejected request",
					zap.String("path", c.Path()), zap.String("cause", authErr.Type))
			}
			return concealedNotFound(c)
		}

		c.Locals(AccountContextKey, acc)
		return c.Next()
	}
}

// concealedNotFound writes the generic not-found page.
func concealedNotFound(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(fiber.StatusNotFound).SendString(notFoundPage)
}

// NotFoundHandler serves the same page for genuinely unknown routes, so
// concealed failures and missing routes are indistinguishable.
func NotFoundHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return concealedNotFound(c)
	}
}

// AccountFromCtx returns the account a guard attached to the request.
func AccountFromCtx(c *fiber.Ctx) (*Account, bool) {
	acc, ok := c.Locals(AccountContextKey).(*Account)
	return acc, ok
}

// SetTokenCookie issues the HttpOnly token cookie. SameSite strict keeps the
// cookie off cross-site requests; Secure is enabled in production only.
func (g *Guard) SetTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.tokens.TTL().Seconds()),
		HTTPOnly: true,
		Secure:   g.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// ClearTokenCookie instructs the client to drop the token cookie by setting
// an already-expired empty value.
func (g *Guard) ClearTokenCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   g.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
