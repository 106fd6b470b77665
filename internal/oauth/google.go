// Package oauth wraps the external OAuth collaborators. Providers exchange an
// authorization code for a normalized profile; everything protocol-specific
// stays behind the Provider interface.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/financex/financex/internal/domain"
)

// Profile is the normalized identity returned by a provider.
type Profile struct {
	Email         string
	Name          string
	EmailVerified bool
}

type Provider interface {
	// AuthURL builds the provider authorization URL for the given state token.
	AuthURL(state string) string
	// ResolveProfile exchanges an authorization code for the user's profile.
	// Returns domain.ErrInvalidOAuthCode when the exchange is rejected.
	ResolveProfile(ctx context.Context, code string) (Profile, error)
}

type GoogleProvider struct {
	conf       *oauth2.Config
	httpClient *http.Client
}

func NewGoogle(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *GoogleProvider) AuthURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *GoogleProvider) ResolveProfile(ctx context.Context, code string) (Profile, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, domain.ErrInvalidOAuthCode
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return Profile{}, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch google user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("google userinfo returned status %d", resp.StatusCode)
	}

	var u struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return Profile{}, fmt.Errorf("decode google user: %w", err)
	}
	if u.Email == "" {
		return Profile{}, fmt.Errorf("google profile has no email")
	}

	return Profile{Email: u.Email, Name: u.Name, EmailVerified: u.VerifiedEmail}, nil
}
