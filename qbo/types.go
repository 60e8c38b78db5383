package qbo

// Wire types for the subset of the QuickBooks Online v3 API this
// connector uses. Money fields are float64 on the wire; internal
// arithmetic happens on decimals and converts at this boundary.

type Ref struct {
	Value string `json:"value"`
	Name  string `json:"name,omitempty"`
}

type Address struct {
	Line1                  string `json:"Line1,omitempty"`
	Line2                  string `json:"Line2,omitempty"`
	City                   string `json:"City,omitempty"`
	CountrySubDivisionCode string `json:"CountrySubDivisionCode,omitempty"`
	PostalCode             string `json:"PostalCode,omitempty"`
	Country                string `json:"Country,omitempty"`
}

type EmailAddr struct {
	Address string `json:"Address"`
}

type Phone struct {
	FreeFormNumber string `json:"FreeFormNumber"`
}

type Customer struct {
	Id               string     `json:"Id,omitempty"`
	SyncToken        string     `json:"SyncToken,omitempty"`
	DisplayName      string     `json:"DisplayName,omitempty"`
	PrimaryEmailAddr *EmailAddr `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone     *Phone     `json:"PrimaryPhone,omitempty"`
	BillAddr         *Address   `json:"BillAddr,omitempty"`
	Taxable          *bool      `json:"Taxable,omitempty"`
	ResaleNum        string     `json:"ResaleNum,omitempty"`
	CurrencyRef      *Ref       `json:"CurrencyRef,omitempty"`
	Active           *bool      `json:"Active,omitempty"`
}

type Item struct {
	Id           string  `json:"Id,omitempty"`
	SyncToken    string  `json:"SyncToken,omitempty"`
	Name         string  `json:"Name,omitempty"`
	Type         string  `json:"Type,omitempty"`
	UnitPrice    float64 `json:"UnitPrice,omitempty"`
	PurchaseCost float64 `json:"PurchaseCost,omitempty"`
	Taxable      *bool   `json:"Taxable,omitempty"`
	Active       *bool   `json:"Active,omitempty"`
}

type SalesItemLineDetail struct {
	ItemRef    *Ref    `json:"ItemRef,omitempty"`
	Qty        float64 `json:"Qty,omitempty"`
	UnitPrice  float64 `json:"UnitPrice,omitempty"`
	TaxCodeRef *Ref    `json:"TaxCodeRef,omitempty"`
}

type DiscountLineDetail struct {
	DiscountAccountRef *Ref  `json:"DiscountAccountRef,omitempty"`
	TaxCodeRef         *Ref  `json:"TaxCodeRef,omitempty"`
	PercentBased       *bool `json:"PercentBased,omitempty"`
}

type Line struct {
	Id                  string               `json:"Id,omitempty"`
	LineNum             int                  `json:"LineNum,omitempty"`
	Description         string               `json:"Description,omitempty"`
	Amount              float64              `json:"Amount"`
	DetailType          string               `json:"DetailType"`
	SalesItemLineDetail *SalesItemLineDetail `json:"SalesItemLineDetail,omitempty"`
	DiscountLineDetail  *DiscountLineDetail  `json:"DiscountLineDetail,omitempty"`
}

const (
	DetailTypeSalesItem = "SalesItemLineDetail"
	DetailTypeDiscount  = "DiscountLineDetail"
)

type Invoice struct {
	Id          string  `json:"Id,omitempty"`
	SyncToken   string  `json:"SyncToken,omitempty"`
	DocNumber   string  `json:"DocNumber,omitempty"`
	TxnDate     string  `json:"TxnDate,omitempty"`
	DueDate     string  `json:"DueDate,omitempty"`
	CustomerRef *Ref    `json:"CustomerRef,omitempty"`
	Line        []Line  `json:"Line,omitempty"`
	CurrencyRef *Ref    `json:"CurrencyRef,omitempty"`
	TotalAmt    float64 `json:"TotalAmt,omitempty"`
	Balance     float64 `json:"Balance,omitempty"`
}

type LinkedTxn struct {
	TxnId   string `json:"TxnId"`
	TxnType string `json:"TxnType"`
}

type PaymentLine struct {
	Amount    float64     `json:"Amount"`
	LinkedTxn []LinkedTxn `json:"LinkedTxn,omitempty"`
}

type Payment struct {
	Id                  string        `json:"Id,omitempty"`
	SyncToken           string        `json:"SyncToken,omitempty"`
	TotalAmt            float64       `json:"TotalAmt,omitempty"`
	TxnDate             string        `json:"TxnDate,omitempty"`
	PaymentRefNum       string        `json:"PaymentRefNum,omitempty"`
	CustomerRef         *Ref          `json:"CustomerRef,omitempty"`
	DepositToAccountRef *Ref          `json:"DepositToAccountRef,omitempty"`
	PaymentMethodRef    *Ref          `json:"PaymentMethodRef,omitempty"`
	Line                []PaymentLine `json:"Line,omitempty"`
}

type Account struct {
	Id          string `json:"Id,omitempty"`
	Name        string `json:"Name,omitempty"`
	AccountType string `json:"AccountType,omitempty"`
}

type PaymentMethod struct {
	Id   string `json:"Id,omitempty"`
	Name string `json:"Name,omitempty"`
}

// QueryResponse is the inner body of a /query result. Only the entity
// slices this connector queries are mapped.
type QueryResponse struct {
	Customer      []Customer      `json:"Customer,omitempty"`
	Item          []Item          `json:"Item,omitempty"`
	Invoice       []Invoice       `json:"Invoice,omitempty"`
	Payment       []Payment       `json:"Payment,omitempty"`
	Account       []Account       `json:"Account,omitempty"`
	PaymentMethod []PaymentMethod `json:"PaymentMethod,omitempty"`
	StartPosition int             `json:"startPosition,omitempty"`
	MaxResults    int             `json:"maxResults,omitempty"`
	TotalCount    int             `json:"totalCount,omitempty"`
}
