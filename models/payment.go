package models

import "github.com/shopspring/decimal"

// PaymentEntry is the ERP-side payment record.
type PaymentEntry struct {
	Name           string             `json:"name"`
	PaymentType    string             `json:"payment_type"`
	PartyType      string             `json:"party_type"`
	Party          string             `json:"party"`
	PostingDate    string             `json:"posting_date"`
	PaidAmount     decimal.Decimal    `json:"paid_amount"`
	ReceivedAmount decimal.Decimal    `json:"received_amount"`
	PaidTo         string             `json:"paid_to"`
	ModeOfPayment  string             `json:"mode_of_payment"`
	Remarks        string             `json:"remarks"`
	ReferenceNo    string             `json:"reference_no"`
	ReferenceDate  string             `json:"reference_date"`
	References     []PaymentReference `json:"references"`
	QboPaymentId   string             `json:"custom_qbo_payment_id"`
	SyncStatus     SyncStatus         `json:"custom_sync_status"`
	DontSync       int                `json:"custom_dont_sync_with_qbo"`
}

// PaymentReference links a payment to the invoice(s) it settles.
type PaymentReference struct {
	ReferenceDoctype string          `json:"reference_doctype"`
	ReferenceName    string          `json:"reference_name"`
	AllocatedAmount  decimal.Decimal `json:"allocated_amount"`
}
