package models

import "github.com/shopspring/decimal"

// Item is the ERP-side item record.
type Item struct {
	Name           string          `json:"name"`
	ItemCode       string          `json:"item_code"`
	ItemName       string          `json:"item_name"`
	Description    string          `json:"description"`
	ItemGroup      string          `json:"item_group"`
	IsStockItem    int             `json:"is_stock_item"`
	StockUom       string          `json:"stock_uom"`
	Disabled       int             `json:"disabled"`
	StandardRate   decimal.Decimal `json:"standard_rate"`
	ValuationRate  decimal.Decimal `json:"valuation_rate"`
	TaxCategory    string          `json:"custom_tax_category"`
	QboItemId      string          `json:"custom_qbo_item_id"`
	QboType        string          `json:"custom_qbo_type"`
	LastSyncedAt   string          `json:"custom_qbo_last_synced_at"`
	SkipQboSync    int             `json:"custom_skip_qbo_sync"`
}

// ItemPrice is a row of the ERP's Item Price doctype (per price list).
type ItemPrice struct {
	Name          string          `json:"name"`
	ItemCode      string          `json:"item_code"`
	PriceList     string          `json:"price_list"`
	Selling       int             `json:"selling"`
	PriceListRate decimal.Decimal `json:"price_list_rate"`
}
