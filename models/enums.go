package models

// SyncStatus mirrors the values stored in the ERP's custom_qbo_sync_status
// field. The "Missing <Field>" family is parameterized, so it is built
// through SyncStatusMissing rather than enumerated here.
type SyncStatus string

const (
	SyncStatusEmpty           SyncStatus = ""
	SyncStatusSynced          SyncStatus = "Synced"
	SyncStatusMissingMultiple SyncStatus = "Missing Multiple Fields"
	SyncStatusTaxMismatch     SyncStatus = "Tax Status Mismatch"
	SyncStatusTaxUnknown      SyncStatus = "Tax Status Unknown"
	SyncStatusFailed          SyncStatus = "Failed"
)

func SyncStatusMissing(field string) SyncStatus {
	return SyncStatus("Missing " + field)
}

// TaxStatus is the ERP-side tax classification of a customer.
type TaxStatus string

const (
	TaxStatusTaxed   TaxStatus = "Taxed"
	TaxStatusExempt  TaxStatus = "Exempt"
	TaxStatusPending TaxStatus = "Pending"
)

// QBO sales-tax code tags. Every sales line carries exactly one of these.
const (
	TaxCodeTaxable    = "TAX"
	TaxCodeNonTaxable = "NON"
)

// Tax categories stored on ERP Items, assigned when items are pulled from QBO.
const (
	ItemTaxCategoryTaxable    = "Taxable"
	ItemTaxCategoryNonTaxable = "Not Taxable"
)

const (
	SyncRunStatusQueued  = "queued"
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
	SyncRunStatusPartial = "partial"
)

const (
	SyncTriggeredManual = "manual"
	SyncTriggeredRetry  = "retry"
	SyncTriggeredSystem = "system"
)
