package qbo

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

const (
	intuitAuthURL  = "https://appcenter.intuit.com/connect/oauth2"
	intuitTokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"

	sandboxBaseURL    = "https://sandbox-quickbooks.api.intuit.com"
	productionBaseURL = "https://quickbooks.api.intuit.com"

	ScopeAccounting = "com.intuit.quickbooks.accounting"
)

// BaseURL maps a configured environment name to the API host.
func BaseURL(environment string) (string, error) {
	switch environment {
	case "sandbox":
		return sandboxBaseURL, nil
	case "production":
		return productionBaseURL, nil
	default:
		return "", fmt.Errorf("unknown qbo environment %q", environment)
	}
}

// OAuthConfig builds the Intuit OAuth2 configuration used for both the
// initial connect flow and refresh-token exchanges.
func OAuthConfig(clientId, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientId,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{ScopeAccounting},
		Endpoint: oauth2.Endpoint{
			AuthURL:   intuitAuthURL,
			TokenURL:  intuitTokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}
}

// Refresh exchanges a refresh token for a fresh token pair. Intuit
// rotates refresh tokens, so the caller must persist the returned
// token's RefreshToken as well as its AccessToken.
func Refresh(ctx context.Context, cfg *oauth2.Config, refreshToken string) (*oauth2.Token, error) {
	src := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh qbo token: %w", err)
	}
	return tok, nil
}
