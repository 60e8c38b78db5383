package qbosync_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbo"
	"bitbucket.org/mmdatafocus/qbo_connector/qbosync"
)

func TestSplitDiscountProportions(t *testing.T) {
	taxable, nonTaxable := qbosync.SplitDiscount(
		decimal.NewFromInt(150),
		decimal.NewFromInt(25),
		decimal.NewFromInt(10),
	)
	if !taxable.Equal(decimal.RequireFromString("15")) {
		t.Errorf("taxable bucket = %s, want 15", taxable)
	}
	if !nonTaxable.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("non-taxable bucket = %s, want 2.5", nonTaxable)
	}

	// The two buckets always reassemble the discount on the whole total.
	total := decimal.NewFromInt(175).Mul(decimal.NewFromInt(10)).Div(decimal.NewFromInt(100))
	if !taxable.Add(nonTaxable).Equal(total) {
		t.Errorf("buckets sum to %s, want %s", taxable.Add(nonTaxable), total)
	}
}

func TestSplitDiscountReassemblesWholeTotal(t *testing.T) {
	cases := []struct {
		name                         string
		taxable, nonTaxable, percent string
		wantTaxable, wantNonTaxable  string
	}{
		// Independent rounding would give 0.33 + 0.33 = 0.66 here; the
		// discount on the whole 20.00 total is 0.666, which rounds to 0.67.
		{"both buckets round down", "10", "10", "3.33", "0.33", "0.34"},
		{"uneven buckets", "99.99", "0.01", "7.5", "7.50", "0.00"},
		{"sub-cent non-taxable", "0.01", "100", "12.5", "0.00", "12.50"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			taxable, nonTaxable := qbosync.SplitDiscount(
				decimal.RequireFromString(tc.taxable),
				decimal.RequireFromString(tc.nonTaxable),
				decimal.RequireFromString(tc.percent),
			)
			if !taxable.Equal(decimal.RequireFromString(tc.wantTaxable)) {
				t.Errorf("taxable bucket = %s, want %s", taxable, tc.wantTaxable)
			}
			if !nonTaxable.Equal(decimal.RequireFromString(tc.wantNonTaxable)) {
				t.Errorf("non-taxable bucket = %s, want %s", nonTaxable, tc.wantNonTaxable)
			}
			total := decimal.RequireFromString(tc.taxable).
				Add(decimal.RequireFromString(tc.nonTaxable)).
				Mul(decimal.RequireFromString(tc.percent)).
				Div(decimal.NewFromInt(100)).
				Round(2)
			if !taxable.Add(nonTaxable).Equal(total) {
				t.Errorf("buckets sum to %s, want %s", taxable.Add(nonTaxable), total)
			}
		})
	}
}

func TestSplitDiscountZeroBucket(t *testing.T) {
	taxable, nonTaxable := qbosync.SplitDiscount(
		decimal.NewFromInt(200),
		decimal.Zero,
		decimal.NewFromInt(5),
	)
	if !taxable.Equal(decimal.NewFromInt(10)) {
		t.Errorf("taxable bucket = %s, want 10", taxable)
	}
	if !nonTaxable.IsZero() {
		t.Errorf("non-taxable bucket = %s, want 0", nonTaxable)
	}
}

func discountInvoice() *models.SalesInvoice {
	return &models.SalesInvoice{
		Name:        "SINV-0042",
		Customer:    "CUST-0001",
		PostingDate: "2026-08-01",
		Docstatus:   1,
		Items: []models.InvoiceItem{
			{ItemCode: "WIDGET", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(100)},
			{ItemCode: "GADGET", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(50)},
			{ItemCode: "MANUAL", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(25)},
		},
		AdditionalDiscountPercentage: decimal.NewFromInt(10),
	}
}

func stockInvoiceItems(store *fakeStore) {
	store.put("Item", "WIDGET", models.Item{Name: "WIDGET", ItemName: "Widget", QboItemId: "11", TaxCategory: models.ItemTaxCategoryTaxable})
	store.put("Item", "GADGET", models.Item{Name: "GADGET", ItemName: "Gadget", QboItemId: "12", TaxCategory: models.ItemTaxCategoryTaxable})
	store.put("Item", "MANUAL", models.Item{Name: "MANUAL", ItemName: "Manual", QboItemId: "13", TaxCategory: models.ItemTaxCategoryNonTaxable})
}

func TestBuildInvoicePayloadDiscountSplit(t *testing.T) {
	store := newFakeStore(t)
	stockInvoiceItems(store)
	deps := newTestDeps(store, newFakeQBO(t))

	payload, err := qbosync.BuildInvoicePayload(context.Background(), deps, discountInvoice(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.Line) != 5 {
		t.Fatalf("line count = %d, want 3 sales + 2 discount", len(payload.Line))
	}

	var discounts []qbo.Line
	for _, line := range payload.Line {
		if line.DetailType == qbo.DetailTypeDiscount {
			discounts = append(discounts, line)
		}
	}
	if len(discounts) != 2 {
		t.Fatalf("discount lines = %d, want 2", len(discounts))
	}
	if discounts[0].Amount != -15.00 {
		t.Errorf("taxable discount = %v, want -15.00", discounts[0].Amount)
	}
	if discounts[0].DiscountLineDetail.DiscountAccountRef.Value != "91" {
		t.Errorf("taxable discount account = %s, want 91", discounts[0].DiscountLineDetail.DiscountAccountRef.Value)
	}
	if discounts[1].Amount != -2.50 {
		t.Errorf("non-taxable discount = %v, want -2.50", discounts[1].Amount)
	}
	if discounts[1].DiscountLineDetail.DiscountAccountRef.Value != "92" {
		t.Errorf("non-taxable discount account = %s, want 92", discounts[1].DiscountLineDetail.DiscountAccountRef.Value)
	}
}

func TestBuildInvoicePayloadUntaxedForcesNonTaxable(t *testing.T) {
	store := newFakeStore(t)
	stockInvoiceItems(store)
	deps := newTestDeps(store, newFakeQBO(t))

	payload, err := qbosync.BuildInvoicePayload(context.Background(), deps, discountInvoice(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, line := range payload.Line {
		if line.DetailType != qbo.DetailTypeSalesItem {
			continue
		}
		if line.SalesItemLineDetail.TaxCodeRef.Value != models.TaxCodeNonTaxable {
			t.Errorf("line %s tax code = %s, want NON", line.Description, line.SalesItemLineDetail.TaxCodeRef.Value)
		}
	}
}

func TestBuildInvoicePayloadDropsUnlinkedItems(t *testing.T) {
	store := newFakeStore(t)
	stockInvoiceItems(store)
	store.put("Item", "WIDGET", models.Item{Name: "WIDGET", ItemName: "Widget", TaxCategory: models.ItemTaxCategoryTaxable})
	deps := newTestDeps(store, newFakeQBO(t))

	payload, err := qbosync.BuildInvoicePayload(context.Background(), deps, discountInvoice(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, line := range payload.Line {
		if line.DetailType == qbo.DetailTypeSalesItem && line.SalesItemLineDetail.ItemRef.Value == "" {
			t.Error("line without a QBO item survived")
		}
	}
	// 2 sales lines remain; the taxable discount shrinks to 50 * 10%.
	var taxableDiscount float64
	for _, line := range payload.Line {
		if line.DetailType == qbo.DetailTypeDiscount && line.DiscountLineDetail.TaxCodeRef.Value == models.TaxCodeTaxable {
			taxableDiscount = line.Amount
		}
	}
	if taxableDiscount != -5.00 {
		t.Errorf("taxable discount = %v, want -5.00", taxableDiscount)
	}
}

func TestBuildInvoicePayloadNoLinesIsInvalid(t *testing.T) {
	store := newFakeStore(t)
	store.put("Item", "WIDGET", models.Item{Name: "WIDGET"})
	store.put("Item", "GADGET", models.Item{Name: "GADGET"})
	store.put("Item", "MANUAL", models.Item{Name: "MANUAL"})
	deps := newTestDeps(store, newFakeQBO(t))

	_, err := qbosync.BuildInvoicePayload(context.Background(), deps, discountInvoice(), true)
	if err == nil {
		t.Fatal("expected error for invoice with no syncable lines")
	}
	if !models.IsInvalidEntity(err) {
		t.Fatalf("expected InvalidEntityError, got %T: %v", err, err)
	}
}

func singleLineInvoice(li models.InvoiceItem) *models.SalesInvoice {
	return &models.SalesInvoice{
		Name:        "SINV-0050",
		Customer:    "CUST-0001",
		PostingDate: "2026-08-01",
		Docstatus:   1,
		Items:       []models.InvoiceItem{li},
	}
}

func TestBuildInvoicePayloadUnitPriceResolution(t *testing.T) {
	cases := []struct {
		name          string
		line          models.InvoiceItem
		priceList     []any
		wantUnitPrice float64
		wantAmount    float64
	}{
		{
			name: "selling item price preferred over line rate",
			line: models.InvoiceItem{ItemCode: "WIDGET", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(100)},
			priceList: []any{
				models.ItemPrice{ItemCode: "WIDGET", Selling: 1, PriceListRate: decimal.NewFromInt(35)},
			},
			wantUnitPrice: 35,
			wantAmount:    35,
		},
		{
			name:          "line rate when no item price exists",
			line:          models.InvoiceItem{ItemCode: "WIDGET", Qty: decimal.NewFromInt(2), Rate: decimal.NewFromInt(100)},
			wantUnitPrice: 100,
			wantAmount:    200,
		},
		{
			name: "amount over qty when rate is zero",
			line: models.InvoiceItem{
				ItemCode: "WIDGET",
				Qty:      decimal.NewFromInt(2),
				Amount:   decimal.NewFromInt(50),
			},
			wantUnitPrice: 25,
			wantAmount:    50,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore(t)
			store.put("Item", "WIDGET", models.Item{Name: "WIDGET", ItemName: "Widget", QboItemId: "11", TaxCategory: models.ItemTaxCategoryTaxable})
			if tc.priceList != nil {
				store.lists["Item Price"] = tc.priceList
			}
			deps := newTestDeps(store, newFakeQBO(t))

			payload, err := qbosync.BuildInvoicePayload(context.Background(), deps, singleLineInvoice(tc.line), true)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(payload.Line) != 1 {
				t.Fatalf("line count = %d, want 1", len(payload.Line))
			}
			line := payload.Line[0]
			if line.SalesItemLineDetail.UnitPrice != tc.wantUnitPrice {
				t.Errorf("unit price = %v, want %v", line.SalesItemLineDetail.UnitPrice, tc.wantUnitPrice)
			}
			if line.Amount != tc.wantAmount {
				t.Errorf("amount = %v, want %v", line.Amount, tc.wantAmount)
			}
		})
	}
}

func TestBuildInvoicePayloadDropsZeroAmountLines(t *testing.T) {
	store := newFakeStore(t)
	store.put("Item", "WIDGET", models.Item{Name: "WIDGET", ItemName: "Widget", QboItemId: "11", TaxCategory: models.ItemTaxCategoryTaxable})
	store.put("Item", "FREEBIE", models.Item{Name: "FREEBIE", ItemName: "Freebie", QboItemId: "14", TaxCategory: models.ItemTaxCategoryTaxable})
	deps := newTestDeps(store, newFakeQBO(t))

	inv := singleLineInvoice(models.InvoiceItem{ItemCode: "WIDGET", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(100)})
	inv.Items = append(inv.Items, models.InvoiceItem{ItemCode: "FREEBIE", Qty: decimal.NewFromInt(1)})

	payload, err := qbosync.BuildInvoicePayload(context.Background(), deps, inv, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.Line) != 1 {
		t.Fatalf("line count = %d, want the zero-amount line dropped", len(payload.Line))
	}
	if payload.Line[0].SalesItemLineDetail.ItemRef.Value != "11" {
		t.Errorf("surviving line item = %s, want 11", payload.Line[0].SalesItemLineDetail.ItemRef.Value)
	}
}

func TestBuildInvoicePayloadUnknownTaxCategoryDefaultsNonTaxable(t *testing.T) {
	store := newFakeStore(t)
	store.put("Item", "WIDGET", models.Item{Name: "WIDGET", ItemName: "Widget", QboItemId: "11", TaxCategory: "Luxury Goods"})
	deps := newTestDeps(store, newFakeQBO(t))

	inv := singleLineInvoice(models.InvoiceItem{ItemCode: "WIDGET", Qty: decimal.NewFromInt(1), Rate: decimal.NewFromInt(100)})
	payload, err := qbosync.BuildInvoicePayload(context.Background(), deps, inv, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Line[0].SalesItemLineDetail.TaxCodeRef.Value != models.TaxCodeNonTaxable {
		t.Errorf("tax code = %s, want NON for unrecognized category", payload.Line[0].SalesItemLineDetail.TaxCodeRef.Value)
	}
}

func TestBuildCustomerPayload(t *testing.T) {
	deps := newTestDeps(newFakeStore(t), newFakeQBO(t))
	customer := completeCustomer()
	customer.Country = "United States"

	payload := qbosync.BuildCustomerPayload(deps, customer)
	if payload.DisplayName != "Acme Co" {
		t.Errorf("display name = %q", payload.DisplayName)
	}
	if payload.CurrencyRef == nil || payload.CurrencyRef.Value != "USD" {
		t.Errorf("currency = %+v, want USD fallback", payload.CurrencyRef)
	}
	if payload.Taxable == nil || !*payload.Taxable {
		t.Error("taxed customer must map to Taxable=true")
	}
	if payload.BillAddr == nil || payload.BillAddr.Country != qbosync.CanonicalUSA {
		t.Errorf("bill addr = %+v, want normalized country", payload.BillAddr)
	}
	if payload.PrimaryPhone == nil || payload.PrimaryPhone.FreeFormNumber != "+14155550100" {
		t.Errorf("phone = %+v, want E.164", payload.PrimaryPhone)
	}
}

func TestBuildCustomerPayloadExempt(t *testing.T) {
	deps := newTestDeps(newFakeStore(t), newFakeQBO(t))
	customer := completeCustomer()
	customer.TaxStatus = models.TaxStatusExempt
	customer.TaxExemptionNumber = "EX-123"

	payload := qbosync.BuildCustomerPayload(deps, customer)
	if payload.Taxable == nil || *payload.Taxable {
		t.Error("exempt customer must map to Taxable=false")
	}
	if payload.ResaleNum != "EX-123" {
		t.Errorf("resale num = %q, want EX-123", payload.ResaleNum)
	}
}
