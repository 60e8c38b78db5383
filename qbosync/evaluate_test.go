package qbosync_test

import (
	"testing"

	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbosync"
)

func completeCustomer() *models.Customer {
	return &models.Customer{
		Name:               "CUST-0001",
		CustomerName:       "Acme Co",
		Email:              "billing@acme.test",
		Phone:              "415-555-0100",
		StreetAddressLine1: "1 Market St",
		City:               "San Francisco",
		State:              "CA",
		ZipCode:            "94105",
		Country:            "USA",
		TaxStatus:          models.TaxStatusTaxed,
	}
}

func TestEvaluateCustomerComplete(t *testing.T) {
	evaluation, err := qbosync.EvaluateCustomer(completeCustomer())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !evaluation.Complete {
		t.Fatalf("expected complete, got status %q missing %v", evaluation.Status, evaluation.MissingFields)
	}
}

func TestEvaluateCustomerSingleMissingField(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*models.Customer)
	}{
		{"Email", func(c *models.Customer) { c.Email = "" }},
		{"Phone", func(c *models.Customer) { c.Phone = "   " }},
		{"Address", func(c *models.Customer) { c.City = "" }},
	}
	for _, tc := range cases {
		customer := completeCustomer()
		tc.mutate(customer)
		evaluation, err := qbosync.EvaluateCustomer(customer)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.field, err)
		}
		if evaluation.Complete {
			t.Fatalf("%s: expected incomplete", tc.field)
		}
		want := models.SyncStatusMissing(tc.field)
		if evaluation.Status != want {
			t.Errorf("%s: status = %q, want %q", tc.field, evaluation.Status, want)
		}
	}
}

func TestEvaluateCustomerPartialAddressCountsAsMissing(t *testing.T) {
	customer := completeCustomer()
	customer.ZipCode = ""
	evaluation, err := qbosync.EvaluateCustomer(customer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evaluation.Status != models.SyncStatusMissing("Address") {
		t.Fatalf("status = %q, want %q", evaluation.Status, models.SyncStatusMissing("Address"))
	}
}

func TestEvaluateCustomerMultipleMissingFields(t *testing.T) {
	customer := completeCustomer()
	customer.Phone = ""
	customer.StreetAddressLine1 = ""
	customer.City = ""
	customer.State = ""
	customer.ZipCode = ""
	customer.Country = ""
	evaluation, err := qbosync.EvaluateCustomer(customer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evaluation.Status != models.SyncStatusMissingMultiple {
		t.Fatalf("status = %q, want %q", evaluation.Status, models.SyncStatusMissingMultiple)
	}
	if len(evaluation.MissingFields) != 2 {
		t.Errorf("missing fields = %v, want [Phone Address]", evaluation.MissingFields)
	}
}

func TestEvaluateCustomerNoDisplayNameIsInvalid(t *testing.T) {
	customer := completeCustomer()
	customer.CustomerName = " "
	_, err := qbosync.EvaluateCustomer(customer)
	if err == nil {
		t.Fatal("expected error for customer without display name")
	}
	if !models.IsInvalidEntity(err) {
		t.Fatalf("expected InvalidEntityError, got %T: %v", err, err)
	}
}
