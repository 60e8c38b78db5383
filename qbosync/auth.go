package qbosync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"bitbucket.org/mmdatafocus/qbo_connector/config"
	"bitbucket.org/mmdatafocus/qbo_connector/frappe"
	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbo"
)

const authStateTTL = 10 * time.Minute

var pendingAuthStates sync.Map // state -> time.Time issued

func loadOAuth(ctx context.Context) (*oauth2.Config, *models.QuickBooksSettings, *frappe.Client, error) {
	settings, err := config.GetSettings()
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := frappe.NewClient(settings.FrappeBaseURL, settings.FrappeAPIKey, settings.FrappeAPISecret)
	if err != nil {
		return nil, nil, nil, err
	}
	var qbs models.QuickBooksSettings
	if err := store.GetSingle(ctx, models.QuickBooksSettingsDoctype, &qbs); err != nil {
		return nil, nil, nil, err
	}
	if qbs.ClientId == "" || qbs.ClientSecret == "" {
		return nil, nil, nil, &models.MissingConfigurationError{
			Field:  "clientid/clientsecret",
			Reason: "QuickBooks app credentials are not set",
		}
	}
	if qbs.RedirectUri == "" {
		return nil, nil, nil, &models.MissingConfigurationError{
			Field:  "redirecturi",
			Reason: "OAuth redirect uri is not set",
		}
	}
	return qbo.OAuthConfig(qbs.ClientId, qbs.ClientSecret, qbs.RedirectUri), &qbs, store, nil
}

// StartAuthURL issues a one-time state and returns the Intuit consent
// URL to redirect the operator to.
func StartAuthURL(ctx context.Context) (string, error) {
	cfg, _, _, err := loadOAuth(ctx)
	if err != nil {
		return "", err
	}
	state := uuid.NewString()
	pendingAuthStates.Store(state, time.Now())
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// CompleteAuth validates the callback state, exchanges the code and
// persists the token pair plus realm on the ERP settings doc.
func CompleteAuth(ctx context.Context, state, code, realmId string) error {
	issued, ok := pendingAuthStates.LoadAndDelete(state)
	if !ok || time.Since(issued.(time.Time)) > authStateTTL {
		return &models.InvalidEntityError{Doctype: models.QuickBooksSettingsDoctype, Reason: "unknown or expired oauth state"}
	}
	cfg, _, store, err := loadOAuth(ctx)
	if err != nil {
		return err
	}
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return &models.RemoteCallError{System: "qbo", Op: "oauth exchange", Err: err}
	}
	return persistTokens(ctx, store, token, realmId)
}

// RefreshTokens rotates the stored token pair using the refresh token.
// Called hourly by main's ticker; Intuit refresh tokens rotate on use,
// so both halves are written back.
func RefreshTokens(ctx context.Context) error {
	cfg, qbs, store, err := loadOAuth(ctx)
	if err != nil {
		return err
	}
	if qbs.RefreshToken == "" {
		return &models.MissingConfigurationError{Field: "refreshtoken", Reason: "connect to QuickBooks first"}
	}
	token, err := qbo.Refresh(ctx, cfg, qbs.RefreshToken)
	if err != nil {
		return err
	}
	if err := persistTokens(ctx, store, token, ""); err != nil {
		return err
	}
	config.GetLogger().WithFields(logrus.Fields{"realm": qbs.RealmId}).Info("refreshed QBO tokens")
	return nil
}

func persistTokens(ctx context.Context, store *frappe.Client, token *oauth2.Token, realmId string) error {
	fields := map[string]any{
		"accesstoken":  token.AccessToken,
		"last_refresh": time.Now().UTC().Format("2006-01-02 15:04:05"),
	}
	if token.RefreshToken != "" {
		fields["refreshtoken"] = token.RefreshToken
	}
	if realmId != "" {
		fields["realmid"] = realmId
	}
	return store.UpdateDoc(ctx, models.QuickBooksSettingsDoctype, models.QuickBooksSettingsDoctype, fields)
}
