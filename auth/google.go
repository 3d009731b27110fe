package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleAuthenticator runs the authorization-code flow against Google and
// turns the provider's userinfo response into an ExternalProfile for the
// credential verifier.
type GoogleAuthenticator struct {
	cfg *oauth2.Config
}

// NewGoogleAuthenticator creates the Google OAuth client. Leaving the client
// id or secret empty disables the external login path; the routes stay
// mounted and report the path as unconfigured.
func NewGoogleAuthenticator(clientID, clientSecret, callbackURL string) *GoogleAuthenticator {
	return &GoogleAuthenticator{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// Enabled reports whether the Google OAuth credentials are configured.
func (g *GoogleAuthenticator) Enabled() bool {
	return g.cfg.ClientID != "" && g.cfg.ClientSecret != ""
}

// AuthCodeURL builds the consent-screen URL for the given anti-forgery state.
func (g *GoogleAuthenticator) AuthCodeURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

// FetchProfile exchanges the callback code for a token and fetches the
// asserted identity. The first email Google reports is authoritative.
func (g *GoogleAuthenticator) FetchProfile(ctx context.Context, code string) (ExternalProfile, error) {
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return ExternalProfile{}, fmt.Errorf("could not exchange authorization code: %w", err)
	}

	resp, err := g.cfg.Client(ctx, token).Get(googleUserInfoURL)
	if err != nil {
		return ExternalProfile{}, fmt.Errorf("could not fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ExternalProfile{}, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return ExternalProfile{}, fmt.Errorf("could not decode userinfo: %w", err)
	}
	if info.ID == "" {
		return ExternalProfile{}, fmt.Errorf("userinfo response missing subject id")
	}

	return ExternalProfile{
		ID:    info.ID,
		Email: info.Email,
		Name:  info.Name,
	}, nil
}
