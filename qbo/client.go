package qbo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bitbucket.org/mmdatafocus/qbo_connector/models"
)

const (
	minorVersion = "65"
	queryPerPage = 1000
)

// Client is a rate-limited QuickBooks Online v3 API client scoped to
// one realm (company). The access token is fixed for the client's
// lifetime; callers construct a fresh client per unit of work, which
// picks up tokens the refresher persisted in the meantime.
type Client struct {
	baseURL     string
	realmId     string
	accessToken string
	limiter     *rate.Limiter
	http        *http.Client
}

func NewClient(environment, realmId, accessToken string, requestsPerSecond float64) (*Client, error) {
	baseURL, err := BaseURL(environment)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(realmId) == "" {
		return nil, errors.New("qbo realm id is empty")
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &Client{
		baseURL:     baseURL,
		realmId:     realmId,
		accessToken: accessToken,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		http:        &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) RealmId() string {
	return c.realmId
}

// EscapeQueryValue escapes a literal for use inside single quotes in a
// QBO query. The query language only needs the quote itself escaped.
func EscapeQueryValue(v string) string {
	return strings.ReplaceAll(v, "'", `\'`)
}

// Query runs one QBO query statement and returns the inner response.
func (c *Client) Query(ctx context.Context, query string) (*QueryResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	raw, err := c.do(ctx, http.MethodGet, "/query?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		QueryResponse QueryResponse `json:"QueryResponse"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("qbo query: decode response: %w", err)
	}
	return &parsed.QueryResponse, nil
}

// QueryAll pages through a query with STARTPOSITION/MAXRESULTS until the
// API returns a short page, handing each page to collect. The statement
// must not already carry pagination clauses.
func (c *Client) QueryAll(ctx context.Context, statement string, collect func(*QueryResponse) int) error {
	start := 1
	for {
		paged := fmt.Sprintf("%s STARTPOSITION %d MAXRESULTS %d", statement, start, queryPerPage)
		page, err := c.Query(ctx, paged)
		if err != nil {
			return err
		}
		n := collect(page)
		if n < queryPerPage {
			return nil
		}
		start += n
	}
}

// Get fetches one entity by id, e.g. Get(ctx, "customer", "42", &cust).
func (c *Client) Get(ctx context.Context, entity, id string, out any) error {
	raw, err := c.do(ctx, http.MethodGet, "/"+entity+"/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	return c.unwrap(entity, raw, out)
}

// Create posts a new entity and decodes the created entity (with its
// assigned Id and SyncToken) into out when out is non-nil.
func (c *Client) Create(ctx context.Context, entity string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	raw, err := c.do(ctx, http.MethodPost, "/"+entity, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return c.unwrap(entity, raw, out)
}

// SparseUpdate updates only the fields present in payload. The payload
// must carry the entity's Id and a current SyncToken; QBO rejects stale
// tokens, so fetch fresh immediately before calling.
func (c *Client) SparseUpdate(ctx context.Context, entity string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return err
	}
	fields["sparse"] = true
	body, err = json.Marshal(fields)
	if err != nil {
		return err
	}
	raw, err := c.do(ctx, http.MethodPost, "/"+entity, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return c.unwrap(entity, raw, out)
}

// QueryCustomersByDisplayName runs an exact-match DisplayName query.
func (c *Client) QueryCustomersByDisplayName(ctx context.Context, displayName string) ([]Customer, error) {
	query := fmt.Sprintf("select * from Customer where DisplayName = '%s'", EscapeQueryValue(displayName))
	resp, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return resp.Customer, nil
}

// AllCustomers pages through every customer in the realm.
func (c *Client) AllCustomers(ctx context.Context) ([]Customer, error) {
	var customers []Customer
	err := c.QueryAll(ctx, "select * from Customer", func(page *QueryResponse) int {
		customers = append(customers, page.Customer...)
		return len(page.Customer)
	})
	if err != nil {
		return nil, err
	}
	return customers, nil
}

// AllItems pages through every item in the realm.
func (c *Client) AllItems(ctx context.Context) ([]Item, error) {
	var items []Item
	err := c.QueryAll(ctx, "select * from Item", func(page *QueryResponse) int {
		items = append(items, page.Item...)
		return len(page.Item)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// QueryAccountByName resolves an account by exact name.
func (c *Client) QueryAccountByName(ctx context.Context, name string) (*Account, error) {
	query := fmt.Sprintf("select * from Account where Name = '%s'", EscapeQueryValue(name))
	resp, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(resp.Account) == 0 {
		return nil, nil
	}
	return &resp.Account[0], nil
}

// AllPaymentMethods lists the realm's payment methods.
func (c *Client) AllPaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	resp, err := c.Query(ctx, "select * from PaymentMethod")
	if err != nil {
		return nil, err
	}
	return resp.PaymentMethod, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/v3/company/" + url.PathEscape(c.realmId) + path
	if strings.Contains(endpoint, "?") {
		endpoint += "&minorversion=" + minorVersion
	} else {
		endpoint += "?minorversion=" + minorVersion
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &models.RemoteCallError{System: "qbo", Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if fault, ok := parseFault(resp.StatusCode, raw); ok {
			return nil, &models.RemoteCallError{
				System:     "qbo",
				Op:         method + " " + path,
				StatusCode: resp.StatusCode,
				Detail:     fault.Error(),
				Err:        fault,
			}
		}
		return nil, &models.RemoteCallError{
			System:     "qbo",
			Op:         method + " " + path,
			StatusCode: resp.StatusCode,
			Detail:     strings.TrimSpace(string(raw)),
		}
	}
	return raw, nil
}

// unwrap pulls the entity out of a create/read envelope, which keys the
// body by the entity name with QBO's capitalization ("Customer").
func (c *Client) unwrap(entity string, raw json.RawMessage, out any) error {
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("qbo %s: decode envelope: %w", entity, err)
	}
	key := strings.ToUpper(entity[:1]) + entity[1:]
	inner, ok := env[key]
	if !ok {
		return fmt.Errorf("qbo %s: response missing %q", entity, key)
	}
	return json.Unmarshal(inner, out)
}
