package qbo

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEscapeQueryValue(t *testing.T) {
	cases := map[string]string{
		"Acme Co":          "Acme Co",
		"O'Brien Supplies": `O\'Brien Supplies`,
		"''":               `\'\'`,
	}
	for in, want := range cases {
		if got := EscapeQueryValue(in); got != want {
			t.Errorf("EscapeQueryValue(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFault(t *testing.T) {
	body := []byte(`{"Fault":{"Error":[{"Message":"Duplicate Name Exists Error","Detail":"The name supplied already exists.","code":"6240"}],"type":"ValidationFault"},"time":"2026-08-01T10:00:00Z"}`)
	fault, ok := parseFault(400, body)
	if !ok {
		t.Fatal("expected a fault envelope to parse")
	}
	if fault.Type != "ValidationFault" {
		t.Errorf("type = %q", fault.Type)
	}
	if len(fault.Errors) != 1 || fault.Errors[0].Code != "6240" {
		t.Fatalf("errors = %+v", fault.Errors)
	}
	msg := fault.Error()
	for _, want := range []string{"ValidationFault", "6240", "Duplicate Name Exists Error", "400"} {
		if !strings.Contains(msg, want) {
			t.Errorf("fault message %q missing %q", msg, want)
		}
	}
}

func TestParseFaultRejectsNonFaultBody(t *testing.T) {
	if _, ok := parseFault(500, []byte(`{"message":"gateway timeout"}`)); ok {
		t.Error("plain error body parsed as a fault")
	}
	if _, ok := parseFault(500, []byte(`not json`)); ok {
		t.Error("non-json body parsed as a fault")
	}
}

func TestUnwrapEntityEnvelope(t *testing.T) {
	c := &Client{}
	raw := json.RawMessage(`{"Customer":{"Id":"57","DisplayName":"Acme Co","SyncToken":"2"},"time":"2026-08-01T10:00:00Z"}`)
	var customer Customer
	if err := c.unwrap("customer", raw, &customer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customer.Id != "57" || customer.SyncToken != "2" {
		t.Errorf("customer = %+v", customer)
	}
}

func TestUnwrapMissingKey(t *testing.T) {
	c := &Client{}
	var customer Customer
	if err := c.unwrap("customer", json.RawMessage(`{"Item":{}}`), &customer); err == nil {
		t.Error("expected error for an envelope missing the entity key")
	}
}

func TestBaseURLSelection(t *testing.T) {
	if url, err := BaseURL("sandbox"); err != nil || !strings.Contains(url, "sandbox") {
		t.Errorf("sandbox url = %q, err %v", url, err)
	}
	if url, err := BaseURL("production"); err != nil || strings.Contains(url, "sandbox") {
		t.Errorf("production url = %q, err %v", url, err)
	}
	if _, err := BaseURL("staging"); err == nil {
		t.Error("expected error for an unknown environment")
	}
}
