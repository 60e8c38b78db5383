package qbosync

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/qbo_connector/config"
	"bitbucket.org/mmdatafocus/qbo_connector/frappe"
	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbo"
)

// DocumentStore is the slice of the ERP client the pipelines need.
// *frappe.Client satisfies it; tests use in-memory fakes.
type DocumentStore interface {
	GetDoc(ctx context.Context, doctype, name string, out any) error
	GetSingle(ctx context.Context, doctype string, out any) error
	List(ctx context.Context, doctype string, opts frappe.ListOptions, out any) error
	UpdateDoc(ctx context.Context, doctype, name string, fields map[string]any) error
	CreateDoc(ctx context.Context, doctype string, doc any, out any) error
	SubmitDoc(ctx context.Context, doctype, name string) error
}

// Accounting is the slice of the QBO client the pipelines need.
type Accounting interface {
	QueryCustomersByDisplayName(ctx context.Context, displayName string) ([]qbo.Customer, error)
	AllCustomers(ctx context.Context) ([]qbo.Customer, error)
	AllItems(ctx context.Context) ([]qbo.Item, error)
	QueryAccountByName(ctx context.Context, name string) (*qbo.Account, error)
	AllPaymentMethods(ctx context.Context) ([]qbo.PaymentMethod, error)
	Get(ctx context.Context, entity, id string, out any) error
	Create(ctx context.Context, entity string, payload, out any) error
	SparseUpdate(ctx context.Context, entity string, payload, out any) error
	RealmId() string
}

// Deps carries everything one sync run needs. Built once per batch or
// request; no component reaches for globals.
type Deps struct {
	Settings *config.Settings
	Store    DocumentStore
	QBO      Accounting
	DB       *gorm.DB // run-history store; nil disables recording
	Logger   *logrus.Logger

	refCache refCache
}

// refCache memoizes account and payment-method lookups for the life of
// one Deps, so a batch resolves each name at most once.
type refCache struct {
	mu       sync.Mutex
	accounts map[string]*qbo.Ref
	methods  map[string]*qbo.Ref
}

// BuildDeps loads settings, connects both clients and verifies the QBO
// credential on record. Returns MissingConfiguration when the realm or
// token is absent.
func BuildDeps(ctx context.Context) (*Deps, error) {
	settings, err := config.GetSettings()
	if err != nil {
		return nil, err
	}

	store, err := frappe.NewClient(settings.FrappeBaseURL, settings.FrappeAPIKey, settings.FrappeAPISecret)
	if err != nil {
		return nil, err
	}

	var qbs models.QuickBooksSettings
	if err := store.GetSingle(ctx, models.QuickBooksSettingsDoctype, &qbs); err != nil {
		return nil, err
	}
	if qbs.RealmId == "" {
		return nil, &models.MissingConfigurationError{Field: "realmid", Reason: "connect to QuickBooks first"}
	}
	if qbs.AccessToken == "" {
		return nil, &models.MissingConfigurationError{Field: "accesstoken", Reason: "connect to QuickBooks first"}
	}

	client, err := qbo.NewClient(settings.QBOEnvironment, qbs.RealmId, qbs.AccessToken, settings.QBORateLimit)
	if err != nil {
		return nil, err
	}

	return &Deps{
		Settings: settings,
		Store:    store,
		QBO:      client,
		DB:       config.GetDB(),
		Logger:   config.GetLogger(),
	}, nil
}

func (d *Deps) accountRef(ctx context.Context, name string) (*qbo.Ref, error) {
	d.refCache.mu.Lock()
	if d.refCache.accounts == nil {
		d.refCache.accounts = map[string]*qbo.Ref{}
	}
	if ref, ok := d.refCache.accounts[name]; ok {
		d.refCache.mu.Unlock()
		return ref, nil
	}
	d.refCache.mu.Unlock()

	account, err := d.QBO.QueryAccountByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, &models.MissingConfigurationError{Field: "deposit account", Reason: "no QBO account named " + name}
	}
	ref := &qbo.Ref{Value: account.Id, Name: account.Name}

	d.refCache.mu.Lock()
	d.refCache.accounts[name] = ref
	d.refCache.mu.Unlock()
	return ref, nil
}

// paymentMethodRef resolves a mode-of-payment name against the realm's
// payment methods, nil when there is no match (the payment still posts,
// just without a method).
func (d *Deps) paymentMethodRef(ctx context.Context, name string) (*qbo.Ref, error) {
	if name == "" {
		return nil, nil
	}
	d.refCache.mu.Lock()
	if d.refCache.methods == nil {
		d.refCache.mu.Unlock()
		methods, err := d.QBO.AllPaymentMethods(ctx)
		if err != nil {
			return nil, err
		}
		d.refCache.mu.Lock()
		d.refCache.methods = make(map[string]*qbo.Ref, len(methods))
		for _, m := range methods {
			d.refCache.methods[m.Name] = &qbo.Ref{Value: m.Id, Name: m.Name}
		}
	}
	ref := d.refCache.methods[name]
	d.refCache.mu.Unlock()
	return ref, nil
}
