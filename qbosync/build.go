package qbosync

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/ttacon/libphonenumber"

	"bitbucket.org/mmdatafocus/qbo_connector/frappe"
	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbo"
)

var oneHundred = decimal.NewFromInt(100)

// BuildCustomerPayload maps a complete local customer into the QBO
// create shape. Pure construction; the caller issues the network call.
func BuildCustomerPayload(deps *Deps, c *models.Customer) *qbo.Customer {
	currency := strings.TrimSpace(c.DefaultCurrency)
	if currency == "" {
		currency = deps.Settings.FallbackCurrency
	}

	taxable := c.TaxStatus != models.TaxStatusExempt
	payload := &qbo.Customer{
		DisplayName: c.CustomerName,
		Taxable:     &taxable,
		CurrencyRef: &qbo.Ref{Value: currency},
	}
	if c.TaxStatus == models.TaxStatusExempt && c.TaxExemptionNumber != "" {
		payload.ResaleNum = c.TaxExemptionNumber
	}
	if email := strings.TrimSpace(c.Email); email != "" {
		payload.PrimaryEmailAddr = &qbo.EmailAddr{Address: email}
	}
	if phone := strings.TrimSpace(c.Phone); phone != "" {
		payload.PrimaryPhone = &qbo.Phone{FreeFormNumber: formatPhone(deps, phone)}
	}
	if addr := c.Address(); !addr.Empty() {
		payload.BillAddr = &qbo.Address{
			Line1:                  addr.Line1,
			Line2:                  addr.Line2,
			City:                   addr.City,
			CountrySubDivisionCode: addr.State,
			PostalCode:             addr.PostalCode,
			Country:                NormalizeCountry(addr.Country),
		}
	}
	return payload
}

// formatPhone best-effort normalizes to E.164. Presence of the phone is
// the evaluator's call; a parse failure keeps the raw value.
func formatPhone(deps *Deps, phone string) string {
	parsed, err := libphonenumber.Parse(phone, deps.Settings.PhoneRegion)
	if err != nil {
		deps.Logger.WithFields(logrus.Fields{"phone": phone}).Warn("phone did not parse; sending raw value")
		return phone
	}
	return libphonenumber.Format(parsed, libphonenumber.E164)
}

// SplitDiscount allocates a percentage discount across the taxable and
// non-taxable subtotals. The taxable bucket is rounded and the
// non-taxable bucket absorbs the remainder, so the two always sum to
// the discount on the whole pre-discount total rounded to cents.
func SplitDiscount(taxableSubtotal, nonTaxableSubtotal, percent decimal.Decimal) (taxable, nonTaxable decimal.Decimal) {
	factor := percent.Div(oneHundred)
	total := taxableSubtotal.Add(nonTaxableSubtotal).Mul(factor).Round(2)
	taxable = taxableSubtotal.Mul(factor).Round(2)
	return taxable, total.Sub(taxable)
}

// BuildInvoicePayload constructs the QBO invoice for a submitted local
// invoice. Lines whose item has no QBO counterpart or whose computed
// amount is non-positive are dropped with a warning; an invoice left
// with zero lines is invalid.
func BuildInvoicePayload(ctx context.Context, deps *Deps, inv *models.SalesInvoice, taxable bool) (*qbo.Invoice, error) {
	log := deps.Logger.WithFields(logrus.Fields{"invoice": inv.Name})

	var lines []qbo.Line
	taxableSubtotal := decimal.Zero
	nonTaxableSubtotal := decimal.Zero

	for _, li := range inv.Items {
		var item models.Item
		if err := deps.Store.GetDoc(ctx, "Item", li.ItemCode, &item); err != nil {
			return nil, err
		}
		if item.QboItemId == "" {
			log.WithFields(logrus.Fields{"item": li.ItemCode}).Warn("item has no QBO id; dropping line")
			continue
		}

		price, err := resolveUnitPrice(ctx, deps, li)
		if err != nil {
			return nil, err
		}
		amount := price.Mul(li.Qty).Round(2)
		if !amount.IsPositive() {
			log.WithFields(logrus.Fields{"item": li.ItemCode, "amount": amount.String()}).Warn("non-positive line amount; dropping line")
			continue
		}

		taxCode := lineTaxCode(deps, &item, taxable)
		if taxCode == models.TaxCodeTaxable {
			taxableSubtotal = taxableSubtotal.Add(amount)
		} else {
			nonTaxableSubtotal = nonTaxableSubtotal.Add(amount)
		}

		lines = append(lines, qbo.Line{
			Description: li.Description,
			Amount:      amount.InexactFloat64(),
			DetailType:  qbo.DetailTypeSalesItem,
			SalesItemLineDetail: &qbo.SalesItemLineDetail{
				ItemRef:    &qbo.Ref{Value: item.QboItemId, Name: item.ItemName},
				Qty:        li.Qty.InexactFloat64(),
				UnitPrice:  price.InexactFloat64(),
				TaxCodeRef: &qbo.Ref{Value: taxCode},
			},
		})
	}

	if len(lines) == 0 {
		return nil, &models.InvalidEntityError{
			Doctype: "Sales Invoice",
			Name:    inv.Name,
			Reason:  "no syncable lines",
		}
	}

	lines = append(lines, buildDiscountLines(deps, inv.AdditionalDiscountPercentage, taxableSubtotal, nonTaxableSubtotal)...)

	return &qbo.Invoice{
		DocNumber:   inv.Name,
		TxnDate:     inv.PostingDate,
		DueDate:     inv.DueDate,
		CustomerRef: nil, // set by the caller, which holds the customer link
		Line:        lines,
	}, nil
}

// resolveUnitPrice prefers the selling Item Price, then the stored line
// rate, then amount/qty, floored at zero.
func resolveUnitPrice(ctx context.Context, deps *Deps, li models.InvoiceItem) (decimal.Decimal, error) {
	var prices []models.ItemPrice
	err := deps.Store.List(ctx, "Item Price", frappe.ListOptions{
		Filters: [][3]string{
			{"item_code", "=", li.ItemCode},
			{"selling", "=", "1"},
		},
		Fields: []string{"name", "item_code", "price_list_rate"},
		Limit:  1,
	}, &prices)
	if err != nil {
		return decimal.Zero, err
	}
	if len(prices) > 0 && prices[0].PriceListRate.IsPositive() {
		return prices[0].PriceListRate, nil
	}
	if li.Rate.IsPositive() {
		return li.Rate, nil
	}
	if li.Qty.IsPositive() && li.Amount.IsPositive() {
		return li.Amount.Div(li.Qty).Round(2), nil
	}
	return decimal.Zero, nil
}

// lineTaxCode assigns TAX or NON. An untaxed invoice forces NON on every
// line; otherwise the item's tax category decides, defaulting to NON
// with a logged warning when the category is unrecognized.
func lineTaxCode(deps *Deps, item *models.Item, invoiceTaxable bool) string {
	if !invoiceTaxable {
		return models.TaxCodeNonTaxable
	}
	switch item.TaxCategory {
	case models.ItemTaxCategoryTaxable:
		return models.TaxCodeTaxable
	case models.ItemTaxCategoryNonTaxable:
		return models.TaxCodeNonTaxable
	default:
		deps.Logger.WithFields(logrus.Fields{
			"item":     item.Name,
			"category": item.TaxCategory,
		}).Warn("unrecognized item tax category; defaulting to non-taxable")
		return models.TaxCodeNonTaxable
	}
}

// buildDiscountLines turns a percentage discount into up to two negative
// lines, one per tax bucket, against the configured discount accounts.
// The split keeps the provider's tax engine applying tax to the right
// post-discount base per bucket.
func buildDiscountLines(deps *Deps, percent, taxableSubtotal, nonTaxableSubtotal decimal.Decimal) []qbo.Line {
	if !percent.IsPositive() {
		return nil
	}
	taxableDiscount, nonTaxableDiscount := SplitDiscount(taxableSubtotal, nonTaxableSubtotal, percent)

	var lines []qbo.Line
	if taxableDiscount.IsPositive() {
		lines = append(lines, qbo.Line{
			Amount:     taxableDiscount.Neg().InexactFloat64(),
			DetailType: qbo.DetailTypeDiscount,
			DiscountLineDetail: &qbo.DiscountLineDetail{
				DiscountAccountRef: &qbo.Ref{Value: deps.Settings.DiscountAccountTaxableId},
				TaxCodeRef:         &qbo.Ref{Value: models.TaxCodeTaxable},
			},
		})
	}
	if nonTaxableDiscount.IsPositive() {
		lines = append(lines, qbo.Line{
			Amount:     nonTaxableDiscount.Neg().InexactFloat64(),
			DetailType: qbo.DetailTypeDiscount,
			DiscountLineDetail: &qbo.DiscountLineDetail{
				DiscountAccountRef: &qbo.Ref{Value: deps.Settings.DiscountAccountNonTaxableId},
				TaxCodeRef:         &qbo.Ref{Value: models.TaxCodeNonTaxable},
			},
		})
	}
	return lines
}
