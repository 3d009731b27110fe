package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guardFixture struct {
	app    *fiber.App
	store  *memStore
	tokens *TokenService
	guard  *Guard
}

func newGuardFixture(t *testing.T, idleWindow time.Duration) *guardFixture {
	t.Helper()

	tokens, err := NewTokenService("test-secret-key", "test-issuer", DefaultTokenTTL)
	require.NoError(t, err)
	store := newMemStore()
	guard := NewGuard(tokens, NewActivityTracker(), store, idleWindow, false, nil)

	app := fiber.New()
	app.Get("/protected", guard.Protect(), func(c *fiber.Ctx) error {
		acc, _ := AccountFromCtx(c)
		return c.JSON(fiber.Map{"_id": acc.ID.Hex()})
	})
	app.Get("/dashboard", guard.StrictAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/admin-data", guard.Protect(), guard.Admin(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	return &guardFixture{app: app, store: store, tokens: tokens, guard: guard}
}

func (f *guardFixture) addAccount(t *testing.T, role Role) (*Account, string) {
	t.Helper()
	acc := &Account{Name: "Test", Email: string(role) + "@x.com", AuthProvider: ProviderLocal, Role: role}
	require.NoError(t, f.store.Create(context.Background(), acc))
	token, err := f.tokens.Issue(acc.ID.Hex())
	require.NoError(t, err)
	return acc, token
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, string(body)
}

func TestProtectNoToken(t *testing.T) {
	f := newGuardFixture(t, 0)

	resp, body := doRequest(t, f.app, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Not authorized, no token"}`, body)
}

func TestProtectGarbageToken(t *testing.T) {
	f := newGuardFixture(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, body := doRequest(t, f.app, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Not authorized, token failed"}`, body)
}

func TestProtectTransportPriority(t *testing.T) {
	f := newGuardFixture(t, 0)
	_, token := f.addAccount(t, RoleCustomer)

	// Cookie.
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
	resp, _ := doRequest(t, f.app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Bearer header.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = doRequest(t, f.app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Query parameter, the download-friendly fallback.
	req = httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	resp, _ = doRequest(t, f.app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectDeletedAccount(t *testing.T) {
	f := newGuardFixture(t, 0)

	// Valid token whose subject no longer exists.
	token, err := f.tokens.Issue("64a1f0c2e4b0a1b2c3d4e5f6")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, body := doRequest(t, f.app, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"message":"User not found"}`, body)
}

func TestProtectIdleExpiry(t *testing.T) {
	f := newGuardFixture(t, time.Nanosecond)
	acc, token := f.addAccount(t, RoleCustomer)

	// Seed activity, then let the nanosecond window lapse.
	f.guard.sessions.Touch(acc.ID.Hex())
	time.Sleep(5 * time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, body := doRequest(t, f.app, req)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Session expired due to inactivity"}`, body)

	// The expired entry was cleared, so the next request passes again.
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = doRequest(t, f.app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectTouchesActivity(t *testing.T) {
	f := newGuardFixture(t, 0)
	acc, token := f.addAccount(t, RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ := doRequest(t, f.app, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, ok := f.guard.sessions.LastSeen(acc.ID.Hex())
	assert.True(t, ok)
}

func TestStrictAdminConcealsEveryFailure(t *testing.T) {
	f := newGuardFixture(t, time.Nanosecond)
	_, customerToken := f.addAccount(t, RoleCustomer)

	expiredAcc, expiredToken := f.addAccount(t, RoleAdmin)
	f.guard.sessions.Touch(expiredAcc.ID.Hex())
	time.Sleep(5 * time.Millisecond)

	cases := []struct {
		name  string
		setup func(*http.Request)
	}{
		{"no token", func(*http.Request) {}},
		{"garbage token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer garbage")
		}},
		{"idle expired", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+expiredToken)
		}},
		{"valid non-admin", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+customerToken)
		}},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			tc.setup(req)
			resp, body := doRequest(t, f.app, req)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			bodies = append(bodies, body)
		})
	}

	// The body must be byte-identical across causes.
	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body)
	}
}

func TestStrictAdminIgnoresQueryToken(t *testing.T) {
	f := newGuardFixture(t, 0)
	_, adminToken := f.addAccount(t, RoleAdmin)

	// The same token that works in a header is ignored in the query string.
	req := httptest.NewRequest(http.MethodGet, "/dashboard?token="+adminToken, nil)
	resp, _ := doRequest(t, f.app, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, _ = doRequest(t, f.app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminGateAfterProtect(t *testing.T) {
	f := newGuardFixture(t, 0)
	_, customerToken := f.addAccount(t, RoleCustomer)
	_, adminToken := f.addAccount(t, RoleAdmin)

	req := httptest.NewRequest(http.MethodGet, "/admin-data", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	resp, body := doRequest(t, f.app, req)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Not found"}`, body)

	req = httptest.NewRequest(http.MethodGet, "/admin-data", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, _ = doRequest(t, f.app, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminDenialMatchesRoleDeniedError(t *testing.T) {
	f := newGuardFixture(t, 0)
	_, customerToken := f.addAccount(t, RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/admin-data", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	resp, body := doRequest(t, f.app, req)
	assert.Equal(t, ErrRoleDenied.Code, resp.StatusCode)
	assert.Contains(t, body, ErrRoleDenied.Message)
}
