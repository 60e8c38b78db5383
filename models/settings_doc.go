package models

// QuickBooksSettings is the ERP's "QuickBooks Settings" single doctype. The
// lowercase field names are how the doctype stores them; the connector never
// writes the client credentials, only the rotating token pair.
type QuickBooksSettings struct {
	Name         string `json:"name"`
	ClientId     string `json:"clientid"`
	ClientSecret string `json:"clientsecret"`
	AccessToken  string `json:"accesstoken"`
	RefreshToken string `json:"refreshtoken"`
	RealmId      string `json:"realmid"`
	RedirectUri  string `json:"redirecturi"`
	LastRefresh  string `json:"last_refresh"`
}

const QuickBooksSettingsDoctype = "QuickBooks Settings"
