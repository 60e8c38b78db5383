package models

import "github.com/shopspring/decimal"

// SalesInvoice is the ERP-side sales invoice record.
type SalesInvoice struct {
	Name                         string           `json:"name"`
	Customer                     string           `json:"customer"`
	PostingDate                  string           `json:"posting_date"`
	DueDate                      string           `json:"due_date"`
	Docstatus                    int              `json:"docstatus"`
	Items                        []InvoiceItem    `json:"items"`
	AdditionalDiscountPercentage decimal.Decimal  `json:"additional_discount_percentage"`
	OutstandingAmount            decimal.Decimal  `json:"outstanding_amount"`
	DontSync                     int              `json:"custom_dont_sync"`
	QboSalesInvoiceId            string           `json:"custom_qbo_sales_invoice_id"`
	SyncStatus                   SyncStatus       `json:"custom_sync_status"`
}

// InvoiceItem is one sales line of an ERP invoice.
type InvoiceItem struct {
	ItemCode    string          `json:"item_code"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}
