package models

import "strings"

// Customer is the ERP-side customer record, json tags matching the doctype's
// field names (the custom_ prefix is how ERPNext stores added fields).
type Customer struct {
	Name               string     `json:"name"`
	CustomerName       string     `json:"customer_name"`
	Email              string     `json:"custom_email"`
	Phone              string     `json:"custom_phone"`
	StreetAddressLine1 string     `json:"custom_street_address_line_1"`
	StreetAddressLine2 string     `json:"custom_street_address_line_2"`
	City               string     `json:"custom_city"`
	State              string     `json:"custom_state"`
	ZipCode            string     `json:"custom_zip_code"`
	Country            string     `json:"custom_country"`
	TaxStatus          TaxStatus  `json:"custom_tax_status"`
	TaxExemptionNumber string     `json:"custom_tax_exemption_number"`
	DefaultCurrency    string     `json:"default_currency"`
	QboCustomerId      string     `json:"custom_qbo_customer_id"`
	SyncStatus         SyncStatus `json:"custom_qbo_sync_status"`
	LastSyncedAt       string     `json:"custom_qbo_last_synced_at"`
}

// AddressRecord is the normalized address form used both for outbound
// construction and inbound matching.
type AddressRecord struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// Complete reports whether all five required sub-fields are present.
// Line2 is optional and never counts. A partial address is treated as fully
// missing, never as partially present.
func (a AddressRecord) Complete() bool {
	return strings.TrimSpace(a.Line1) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.State) != "" &&
		strings.TrimSpace(a.PostalCode) != "" &&
		strings.TrimSpace(a.Country) != ""
}

func (a AddressRecord) Empty() bool {
	return strings.TrimSpace(a.Line1) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == "" &&
		strings.TrimSpace(a.PostalCode) == "" &&
		strings.TrimSpace(a.Country) == ""
}

func (c Customer) Address() AddressRecord {
	return AddressRecord{
		Line1:      strings.TrimSpace(c.StreetAddressLine1),
		Line2:      strings.TrimSpace(c.StreetAddressLine2),
		City:       strings.TrimSpace(c.City),
		State:      strings.TrimSpace(c.State),
		PostalCode: strings.TrimSpace(c.ZipCode),
		Country:    strings.TrimSpace(c.Country),
	}
}
