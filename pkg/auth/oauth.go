package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/noticeboard/pkg/logger"
)

// Profile is what a provider tells us about the user after consent.
type Profile struct {
	Subject string
	Name    string
	Email   string
	Avatar  string
}

// ProviderAdapter hides provider specifics from the Coordinator.
type ProviderAdapter interface {
	Provider() Provider
	AuthURL(state string) string
	// ResolveProfile exchanges the code and fetches the profile. Exchange
	// failures are reported as ErrInvalidCode.
	ResolveProfile(ctx context.Context, code string) (Profile, error)
}

// IdentityResolver is satisfied by *Service.
type IdentityResolver interface {
	ResolveOrCreate(ctx context.Context, a Assertion) (*User, error)
}

// Coordinator runs the authorization-code flow for one provider. It keeps no
// state between Start and Callback: the caller stores the state value (in a
// short-lived signed cookie) and passes it back to Callback.
type Coordinator struct {
	adapter  ProviderAdapter
	resolver IdentityResolver
	log      *slog.Logger
}

type CoordinatorOption func(*Coordinator)

func WithCoordinatorLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

func NewCoordinator(adapter ProviderAdapter, resolver IdentityResolver, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{adapter: adapter, resolver: resolver, log: logger.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Coordinator) Provider() Provider { return c.adapter.Provider() }

// Start returns the consent URL and the state it embeds.
func (c *Coordinator) Start() (redirectURL, state string, err error) {
	state, err = randomState()
	if err != nil {
		return "", "", err
	}
	return c.adapter.AuthURL(state), state, nil
}

// Callback validates the provider's redirect and resolves the user.
func (c *Coordinator) Callback(ctx context.Context, query url.Values, expectedState string) (*User, error) {
	provider := logger.Provider(string(c.adapter.Provider()))

	if e := query.Get("error"); e != "" {
		c.log.InfoContext(ctx, "oauth consent denied", provider, slog.String("reason", e))
		return nil, fmt.Errorf("%w: %s", ErrOAuthDenied, e)
	}

	state := query.Get("state")
	if expectedState == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expectedState)) != 1 {
		return nil, ErrInvalidState
	}

	code := query.Get("code")
	if code == "" {
		return nil, ErrInvalidCode
	}

	profile, err := c.adapter.ResolveProfile(ctx, code)
	if err != nil {
		return nil, err
	}
	if profile.Subject == "" {
		return nil, ErrInvalidProfile
	}

	return c.resolver.ResolveOrCreate(ctx, Assertion{
		Provider:   c.adapter.Provider(),
		ProviderID: profile.Subject,
		Name:       profile.Name,
		Email:      profile.Email,
		Avatar:     profile.Avatar,
	})
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// fetchJSON GETs url with a bearer token and decodes the body into v.
func fetchJSON(ctx context.Context, client *http.Client, url, accessToken string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("profile endpoint returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Join(errors.New("failed to decode profile"), err)
	}
	return nil
}
