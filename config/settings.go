package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Settings holds the connector configuration that lives outside the ERP.
// QuickBooks OAuth credentials are NOT here; they live in the
// "QuickBooks Settings" single doc on the ERP side so that the OAuth
// callback can persist refreshed tokens without a redeploy.
type Settings struct {
	FrappeBaseURL   string `validate:"required,url"`
	FrappeAPIKey    string `validate:"required"`
	FrappeAPISecret string `validate:"required"`

	// "sandbox" or "production"; selects the Intuit API base URL.
	QBOEnvironment string `validate:"required,oneof=sandbox production"`

	// Income accounts the discount lines post against, by tax bucket.
	DiscountAccountTaxableId    string `validate:"required"`
	DiscountAccountNonTaxableId string `validate:"required"`

	// QBO account payments are deposited to, matched by name.
	DepositAccountName string `validate:"required"`

	// ERP-side account pulled payments post against.
	ErpDepositAccount string `validate:"required"`

	FallbackCurrency string `validate:"required,len=3"`
	PhoneRegion      string `validate:"required,len=2"`

	// Requests per second against the QBO API.
	QBORateLimit float64 `validate:"required,gt=0"`

	// Whether a US state collects sales tax. Customers in a state not in
	// this table cannot be tax-evaluated and fail with a configuration
	// error rather than a silent guess.
	StateTaxTable map[string]bool `validate:"required,min=1"`
}

var (
	settings     *Settings
	settingsOnce sync.Once
	settingsErr  error
)

// GetSettings loads, validates and caches the settings from the
// environment. The first error is sticky; fix the env and restart.
func GetSettings() (*Settings, error) {
	settingsOnce.Do(func() {
		settings, settingsErr = loadSettings()
	})
	return settings, settingsErr
}

func loadSettings() (*Settings, error) {
	s := &Settings{
		FrappeBaseURL:               strings.TrimRight(os.Getenv("FRAPPE_BASE_URL"), "/"),
		FrappeAPIKey:                os.Getenv("FRAPPE_API_KEY"),
		FrappeAPISecret:             os.Getenv("FRAPPE_API_SECRET"),
		QBOEnvironment:              envOrDefault("QBO_ENVIRONMENT", "sandbox"),
		DiscountAccountTaxableId:    os.Getenv("QBO_DISCOUNT_ACCOUNT_TAXABLE_ID"),
		DiscountAccountNonTaxableId: os.Getenv("QBO_DISCOUNT_ACCOUNT_NONTAXABLE_ID"),
		DepositAccountName:          os.Getenv("QBO_DEPOSIT_ACCOUNT_NAME"),
		ErpDepositAccount:           os.Getenv("FRAPPE_DEPOSIT_ACCOUNT"),
		FallbackCurrency:            envOrDefault("FALLBACK_CURRENCY", "USD"),
		PhoneRegion:                 envOrDefault("PHONE_REGION", "US"),
		QBORateLimit:                floatFromEnv("QBO_RATE_LIMIT", 5),
	}

	table, err := loadStateTaxTable()
	if err != nil {
		return nil, err
	}
	s.StateTaxTable = table

	if err := validator.New().Struct(s); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// loadStateTaxTable returns the built-in table, or the contents of the
// JSON file named by STATE_TAX_TABLE_FILE when set. The file replaces
// the table wholesale so that removals are possible too.
func loadStateTaxTable() (map[string]bool, error) {
	path := os.Getenv("STATE_TAX_TABLE_FILE")
	if path == "" {
		return defaultStateTaxTable(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state tax table %s: %w", path, err)
	}
	table := map[string]bool{}
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse state tax table %s: %w", path, err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("state tax table %s is empty", path)
	}
	normalized := make(map[string]bool, len(table))
	for state, taxed := range table {
		normalized[strings.ToUpper(strings.TrimSpace(state))] = taxed
	}
	return normalized, nil
}

// defaultStateTaxTable covers the 50 states plus DC. The five states
// without a statewide sales tax are false.
func defaultStateTaxTable() map[string]bool {
	table := make(map[string]bool, 51)
	for _, state := range []string{
		"AL", "AR", "AZ", "CA", "CO", "CT", "DC", "FL", "GA", "HI",
		"IA", "ID", "IL", "IN", "KS", "KY", "LA", "MA", "MD", "ME",
		"MI", "MN", "MO", "MS", "NC", "ND", "NE", "NJ", "NM", "NV",
		"NY", "OH", "OK", "PA", "RI", "SC", "SD", "TN", "TX", "UT",
		"VA", "VT", "WA", "WI", "WV", "WY",
	} {
		table[state] = true
	}
	for _, state := range []string{"AK", "DE", "MT", "NH", "OR"} {
		table[state] = false
	}
	return table
}

// StateCollectsTax looks a state up, tolerating case and whitespace.
// The second return is false when the state is not in the table.
func (s *Settings) StateCollectsTax(state string) (bool, bool) {
	taxed, ok := s.StateTaxTable[strings.ToUpper(strings.TrimSpace(state))]
	return taxed, ok
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
