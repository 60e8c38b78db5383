package frappe

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

	"bitbucket.org/mmdatafocus/qbo_connector/models"
)

// Client talks to a Frappe/ERPNext instance over its REST resource API.
// Responses are wrapped in a {"data": ...} envelope; callers pass the
// inner document type and the envelope is handled here.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, apiKey, apiSecret string) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("frappe base url is empty")
	}
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(apiSecret) == "" {
		return nil, errors.New("frappe api key or secret is empty")
	}
	return &Client{
		baseURL: baseURL,
		token:   fmt.Sprintf("token %s:%s", apiKey, apiSecret),
		http:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// ListOptions narrows a doctype listing. Filters use Frappe's triplet
// form, e.g. [["custom_qbo_sync_status","!=","Synced"]].
type ListOptions struct {
	Filters [][3]string
	Fields  []string
	Limit   int
}

// GetDoc fetches one named document into out.
func (c *Client) GetDoc(ctx context.Context, doctype, name string, out any) error {
	raw, err := c.do(ctx, http.MethodGet, c.resourcePath(doctype, name), nil)
	if err != nil {
		return err
	}
	return c.unwrap(doctype, raw, out)
}

// GetSingle fetches a single-type doctype such as "QuickBooks Settings",
// where the document is named after its doctype.
func (c *Client) GetSingle(ctx context.Context, doctype string, out any) error {
	return c.GetDoc(ctx, doctype, doctype, out)
}

// List fetches documents of a doctype, optionally filtered and narrowed
// to specific fields, into out (a pointer to a slice).
func (c *Client) List(ctx context.Context, doctype string, opts ListOptions, out any) error {
	params := url.Values{}
	if len(opts.Filters) > 0 {
		filters, err := json.Marshal(opts.Filters)
		if err != nil {
			return err
		}
		params.Set("filters", string(filters))
	}
	if len(opts.Fields) > 0 {
		fields, err := json.Marshal(opts.Fields)
		if err != nil {
			return err
		}
		params.Set("fields", string(fields))
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 0 // Frappe's limit_page_length=0 means no limit
	}
	params.Set("limit_page_length", fmt.Sprintf("%d", limit))

	path := c.resourcePath(doctype, "") + "?" + params.Encode()
	raw, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.unwrap(doctype, raw, out)
}

// UpdateDoc applies a partial update to a named document. Only the keys
// present in fields change; Frappe merges the rest.
func (c *Client) UpdateDoc(ctx context.Context, doctype, name string, fields map[string]any) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodPut, c.resourcePath(doctype, name), body)
	return err
}

// CreateDoc inserts a new document and decodes the created document
// (with its server-assigned name) into out when out is non-nil.
func (c *Client) CreateDoc(ctx context.Context, doctype string, doc any, out any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	raw, err := c.do(ctx, http.MethodPost, c.resourcePath(doctype, ""), body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return c.unwrap(doctype, raw, out)
}

// SubmitDoc moves a submittable document from draft to submitted.
func (c *Client) SubmitDoc(ctx context.Context, doctype, name string) error {
	return c.UpdateDoc(ctx, doctype, name, map[string]any{"docstatus": 1})
}

func (c *Client) resourcePath(doctype, name string) string {
	path := "/api/resource/" + url.PathEscape(doctype)
	if name != "" {
		path += "/" + url.PathEscape(name)
	}
	return path
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &models.RemoteCallError{System: "frappe", Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &models.RemoteCallError{
			System:     "frappe",
			Op:         method + " " + path,
			StatusCode: resp.StatusCode,
			Detail:     strings.TrimSpace(string(raw)),
		}
	}
	return raw, nil
}

func (c *Client) unwrap(doctype string, raw json.RawMessage, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("frappe %s: decode envelope: %w", doctype, err)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("frappe %s: decode document: %w", doctype, err)
	}
	return nil
}
