package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const facebookProfileURL = "https://graph.facebook.com/v19.0/me?fields=id,name,email,picture.type(large)"

// FacebookOAuthConfig enables Facebook sign-in when AppID is set.
type FacebookOAuthConfig struct {
	AppID       string `env:"FACEBOOK_APP_ID"`
	AppSecret   string `env:"FACEBOOK_APP_SECRET"`
	CallbackURL string `env:"FACEBOOK_CALLBACK_URL" envDefault:"http://localhost:4000/auth/facebook/callback"`
}

func (c FacebookOAuthConfig) Enabled() bool { return c.AppID != "" && c.AppSecret != "" }

type facebookAdapter struct {
	conf       *oauth2.Config
	profileURL string
	httpClient *http.Client
}

func NewFacebookAdapter(cfg FacebookOAuthConfig) ProviderAdapter {
	return &facebookAdapter{
		conf: &oauth2.Config{
			ClientID:     cfg.AppID,
			ClientSecret: cfg.AppSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"email"},
			Endpoint:     facebook.Endpoint,
		},
		profileURL: facebookProfileURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *facebookAdapter) Provider() Provider { return ProviderFacebook }

func (a *facebookAdapter) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state)
}

func (a *facebookAdapter) ResolveProfile(ctx context.Context, code string) (Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}

	// email is absent when the user signed up with a phone number or
	// declined the email permission
	var u struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := fetchJSON(ctx, a.httpClient, a.profileURL, tok.AccessToken, &u); err != nil {
		return Profile{}, fmt.Errorf("failed to fetch facebook profile: %w", err)
	}

	return Profile{
		Subject: u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Avatar:  u.Picture.Data.URL,
	}, nil
}
