package qbosync_test

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/qbo_connector/config"
	"bitbucket.org/mmdatafocus/qbo_connector/frappe"
	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbo"
	"bitbucket.org/mmdatafocus/qbo_connector/qbosync"
)

func roundTrip(t *testing.T, in, out any) {
	t.Helper()
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal fake doc: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal fake doc: %v", err)
	}
}

type updateCall struct {
	doctype string
	name    string
	fields  map[string]any
}

type createCall struct {
	doctype string
	doc     any
}

type fakeStore struct {
	t *testing.T

	docs            map[string]any   // "Doctype/name" -> doc
	lists           map[string][]any // doctype -> rows
	nextCreatedName string

	updates   []updateCall
	created   []createCall
	submitted []string
}

func newFakeStore(t *testing.T) *fakeStore {
	return &fakeStore{
		t:     t,
		docs:  map[string]any{},
		lists: map[string][]any{},
	}
}

func (f *fakeStore) put(doctype, name string, doc any) {
	f.docs[doctype+"/"+name] = doc
}

func (f *fakeStore) GetDoc(_ context.Context, doctype, name string, out any) error {
	doc, ok := f.docs[doctype+"/"+name]
	if !ok {
		return &models.RemoteCallError{System: "frappe", Op: "GET " + doctype + "/" + name, StatusCode: 404, Detail: "not found"}
	}
	roundTrip(f.t, doc, out)
	return nil
}

func (f *fakeStore) GetSingle(ctx context.Context, doctype string, out any) error {
	return f.GetDoc(ctx, doctype, doctype, out)
}

func (f *fakeStore) List(_ context.Context, doctype string, _ frappe.ListOptions, out any) error {
	rows, ok := f.lists[doctype]
	if !ok {
		rows = []any{}
	}
	roundTrip(f.t, rows, out)
	return nil
}

func (f *fakeStore) UpdateDoc(_ context.Context, doctype, name string, fields map[string]any) error {
	f.updates = append(f.updates, updateCall{doctype: doctype, name: name, fields: fields})
	return nil
}

func (f *fakeStore) CreateDoc(_ context.Context, doctype string, doc any, out any) error {
	f.created = append(f.created, createCall{doctype: doctype, doc: doc})
	if out == nil {
		return nil
	}
	fields := map[string]any{}
	roundTrip(f.t, doc, &fields)
	if f.nextCreatedName != "" {
		fields["name"] = f.nextCreatedName
	}
	roundTrip(f.t, fields, out)
	return nil
}

func (f *fakeStore) SubmitDoc(_ context.Context, doctype, name string) error {
	f.submitted = append(f.submitted, doctype+"/"+name)
	return nil
}

type fakeQBO struct {
	t *testing.T

	byName   map[string][]qbo.Customer
	all      []qbo.Customer
	items    []qbo.Item
	accounts map[string]*qbo.Account
	methods  []qbo.PaymentMethod
	gets     map[string]any // "entity/id" -> payload

	createdId string
	createErr error
	queryErr  error

	queryCalls  int
	scanCalls   int
	createCalls int
	lastCreate  createCall
	sparse      []any
}

func newFakeQBO(t *testing.T) *fakeQBO {
	return &fakeQBO{
		t:        t,
		byName:   map[string][]qbo.Customer{},
		accounts: map[string]*qbo.Account{},
		gets:     map[string]any{},
	}
}

func (f *fakeQBO) QueryCustomersByDisplayName(_ context.Context, displayName string) ([]qbo.Customer, error) {
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.byName[displayName], nil
}

func (f *fakeQBO) AllCustomers(_ context.Context) ([]qbo.Customer, error) {
	f.scanCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.all, nil
}

func (f *fakeQBO) AllItems(_ context.Context) ([]qbo.Item, error) {
	f.queryCalls++
	return f.items, nil
}

func (f *fakeQBO) QueryAccountByName(_ context.Context, name string) (*qbo.Account, error) {
	f.queryCalls++
	return f.accounts[name], nil
}

func (f *fakeQBO) AllPaymentMethods(_ context.Context) ([]qbo.PaymentMethod, error) {
	f.queryCalls++
	return f.methods, nil
}

func (f *fakeQBO) Get(_ context.Context, entity, id string, out any) error {
	f.queryCalls++
	doc, ok := f.gets[entity+"/"+id]
	if !ok {
		return &models.RemoteCallError{System: "qbo", Op: "GET " + entity + "/" + id, StatusCode: 404, Detail: "not found"}
	}
	roundTrip(f.t, doc, out)
	return nil
}

func (f *fakeQBO) Create(_ context.Context, entity string, payload, out any) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	f.lastCreate = createCall{doctype: entity, doc: payload}
	if out != nil {
		roundTrip(f.t, map[string]string{"Id": f.createdId}, out)
	}
	return nil
}

func (f *fakeQBO) SparseUpdate(_ context.Context, entity string, payload, out any) error {
	f.sparse = append(f.sparse, payload)
	return nil
}

func (f *fakeQBO) RealmId() string { return "test-realm" }

func testSettings() *config.Settings {
	return &config.Settings{
		FrappeBaseURL:               "http://erp.local",
		FrappeAPIKey:                "key",
		FrappeAPISecret:             "secret",
		QBOEnvironment:              "sandbox",
		DiscountAccountTaxableId:    "91",
		DiscountAccountNonTaxableId: "92",
		DepositAccountName:          "Undeposited Funds",
		ErpDepositAccount:           "Bank Account - C",
		FallbackCurrency:            "USD",
		PhoneRegion:                 "US",
		QBORateLimit:                5,
		StateTaxTable: map[string]bool{
			"CA": true,
			"TX": true,
			"OR": false,
		},
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestDeps(store *fakeStore, remote *fakeQBO) *qbosync.Deps {
	return &qbosync.Deps{
		Settings: testSettings(),
		Store:    store,
		QBO:      remote,
		Logger:   quietLogger(),
	}
}
