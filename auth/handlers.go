package auth

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const oauthStateCookie = "oauth_state"

// Handlers provides the authentication HTTP endpoints.
type Handlers struct {
	svc      *Service
	guard    *Guard
	google   *GoogleAuthenticator
	validate *validator.Validate
	log      *zap.Logger
}

// NewHandlers creates the auth handlers.
func NewHandlers(svc *Service, guard *Guard, google *GoogleAuthenticator, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		svc:      svc,
		guard:    guard,
		google:   google,
		validate: validator.New(),
		log:      log,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse is the shape both login paths and registration return.
type SessionResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	Token   string `json:"token"`
}

// Register handles customer registration.
// POST /api/auth/register
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Please provide all required fields",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Please provide all required fields",
		})
	}

	acc, err := h.svc.RegisterLocal(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return h.writeError(c, err)
	}

	token, err := h.svc.Tokens().Issue(acc.ID.Hex())
	if err != nil {
		return h.writeError(c, fmt.Errorf("could not issue token: %w", err))
	}

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{
		Success: true,
		ID:      acc.ID.Hex(),
		Name:    acc.Name,
		Email:   acc.Email,
		Role:    acc.Role,
		Token:   token,
	})
}

// Login handles customer login with email and password.
// POST /api/auth/login
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Please provide email and password",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Please provide email and password",
		})
	}

	acc, err := h.svc.VerifyLocal(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.writeError(c, err)
	}

	token, err := h.svc.Tokens().Issue(acc.ID.Hex())
	if err != nil {
		return h.writeError(c, fmt.Errorf("could not issue token: %w", err))
	}
	h.guard.SetTokenCookie(c, token)

	return c.JSON(SessionResponse{
		Success: true,
		ID:      acc.ID.Hex(),
		Name:    acc.Name,
		Email:   acc.Email,
		Role:    acc.Role,
		Token:   token,
	})
}

// Me returns the authenticated account's profile. Runs behind Protect.
// GET /api/auth/me
func (h *Handlers) Me(c *fiber.Ctx) error {
	acc, ok := AccountFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": ErrNoToken.Message,
		})
	}
	return c.JSON(fiber.Map{
		"_id":   acc.ID.Hex(),
		"name":  acc.Name,
		"email": acc.Email,
		"role":  acc.Role,
	})
}

// GoogleLogin redirects to the Google consent screen.
// GET /api/auth/google
func (h *Handlers) GoogleLogin(c *fiber.Ctx) error {
	if !h.google.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Google login is not configured",
		})
	}

	state := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HTTPOnly: true,
		Secure:   h.guard.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Redirect(h.google.AuthCodeURL(state), fiber.StatusTemporaryRedirect)
}

// GoogleCallback completes the OAuth flow, resolves or links the account and
// hands the token to the frontend via a redirect.
// GET /api/auth/google/callback
func (h *Handlers) GoogleCallback(c *fiber.Ctx) error {
	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return c.Redirect("/?googleAuth=error", fiber.StatusTemporaryRedirect)
	}
	c.ClearCookie(oauthStateCookie)

	code := c.Query("code")
	if code == "" {
		return c.Redirect("/?googleAuth=error", fiber.StatusTemporaryRedirect)
	}

	profile, err := h.google.FetchProfile(c.Context(), code)
	if err != nil {
		h.log.Warn("google callback failed", zap.Error(err))
		return c.Redirect("/?googleAuth=error", fiber.StatusTemporaryRedirect)
	}

	acc, err := h.svc.VerifyOrLinkExternal(c.Context(), profile)
	if err != nil {
		h.log.Error("could not resolve external identity", zap.Error(err))
		return c.Redirect("/?googleAuth=error", fiber.StatusTemporaryRedirect)
	}

	token, err := h.svc.Tokens().Issue(acc.ID.Hex())
	if err != nil {
		return c.Redirect("/?googleAuth=error", fiber.StatusTemporaryRedirect)
	}
	h.guard.SetTokenCookie(c, token)

	target := fmt.Sprintf("/?googleAuth=success&token=%s&userId=%s&name=%s&email=%s&role=%s",
		url.QueryEscape(token), acc.ID.Hex(),
		url.QueryEscape(acc.Name), url.QueryEscape(acc.Email), acc.Role)
	return c.Redirect(target, fiber.StatusTemporaryRedirect)
}

// GoogleStatus reports whether the external login path is configured.
// GET /api/auth/google/status
func (h *Handlers) GoogleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"configured": h.google.Enabled()})
}

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminLogin authenticates the administrative identity. Mounted under the
// unadvertised admin prefix behind the login rate limit.
// POST /api/secure-admin-auth/login
func (h *Handlers) AdminLogin(c *fiber.Ctx) error {
	var req AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Please provide all required fields",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Please provide all required fields",
		})
	}

	acc, err := h.svc.AdminLogin(c.Context(), req.Email, req.Password)
	if err != nil {
		return h.writeError(c, err)
	}

	token, err := h.svc.Tokens().Issue(acc.ID.Hex())
	if err != nil {
		return h.writeError(c, fmt.Errorf("could not issue token: %w", err))
	}
	h.guard.SetTokenCookie(c, token)

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"_id":   acc.ID.Hex(),
			"name":  acc.Name,
			"email": acc.Email,
			"role":  acc.Role,
		},
		"token": token,
	})
}

// Logout clears the session activity entry and the cookie. It succeeds even
// when the presented token is invalid.
// POST /api/auth/logout, POST /api/secure-admin-auth/logout
func (h *Handlers) Logout(c *fiber.Ctx) error {
	if token := extractToken(c, false); token != "" {
		if subjectID, err := h.svc.Tokens().Verify(token); err == nil {
			h.svc.Logout(subjectID)
		}
	}

	h.guard.ClearTokenCookie(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out successfully",
	})
}

// AdminStatus reports whether the request carries a valid admin session.
// Never errors outward.
// GET /api/secure-admin-auth/status
func (h *Handlers) AdminStatus(c *fiber.Ctx) error {
	token := extractToken(c, false)
	if token == "" {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	subjectID, err := h.svc.Tokens().Verify(token)
	if err != nil {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	acc, err := h.guard.users.FindByID(c.Context(), subjectID)
	if err != nil || !acc.IsAdmin() {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	return c.JSON(fiber.Map{
		"authenticated": true,
		"user": fiber.Map{
			"_id":   acc.ID.Hex(),
			"name":  acc.Name,
			"email": acc.Email,
			"role":  acc.Role,
		},
	})
}

// writeError translates service failures to HTTP responses. AuthError carries
// its own status code; anything else is a 500.
func (h *Handlers) writeError(c *fiber.Ctx, err error) error {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return c.Status(authErr.Code).JSON(fiber.Map{"message": authErr.Message})
	}
	h.log.Error("auth handler failure", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Something went wrong!",
	})
}
