package qbosync

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/qbo_connector/frappe"
	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbo"
)

const (
	pulledItemGroup  = "QuickBooks"
	sellingPriceList = "Standard Selling"
)

// ItemPullReport summarizes one PullItems run.
type ItemPullReport struct {
	Created []string       `json:"created"`
	Skipped int            `json:"skipped"`
	Failed  []FailureEntry `json:"failed"`
}

// PullItems walks every active QBO item and creates local items for the
// ones not yet mapped, carrying the QBO taxable flag into the local tax
// category. Items already mapped by QBO id are skipped.
func PullItems(ctx context.Context, deps *Deps) (*ItemPullReport, error) {
	remoteItems, err := deps.QBO.AllItems(ctx)
	if err != nil {
		return nil, err
	}

	var local []models.Item
	err = deps.Store.List(ctx, "Item", frappe.ListOptions{
		Fields: []string{"name", "custom_qbo_item_id"},
	}, &local)
	if err != nil {
		return nil, err
	}
	mapped := make(map[string]bool, len(local))
	for _, item := range local {
		if item.QboItemId != "" {
			mapped[item.QboItemId] = true
		}
	}

	if err := ensureItemGroup(ctx, deps, pulledItemGroup); err != nil {
		return nil, err
	}

	report := &ItemPullReport{}
	for _, remote := range remoteItems {
		if remote.Active != nil && !*remote.Active {
			report.Skipped++
			continue
		}
		if mapped[remote.Id] {
			report.Skipped++
			continue
		}
		name, err := createPulledItem(ctx, deps, &remote)
		if err != nil {
			deps.Logger.WithFields(logrus.Fields{
				"qbo_item": remote.Id,
				"error":    err.Error(),
			}).Error("item pull failed")
			report.Failed = append(report.Failed, FailureEntry{Name: remote.Name, Reason: err.Error()})
			continue
		}
		report.Created = append(report.Created, name)
	}

	deps.Logger.WithFields(logrus.Fields{
		"created": len(report.Created),
		"skipped": report.Skipped,
		"failed":  len(report.Failed),
	}).Info("item pull finished")
	return report, nil
}

func createPulledItem(ctx context.Context, deps *Deps, remote *qbo.Item) (string, error) {
	taxCategory := models.ItemTaxCategoryNonTaxable
	if remote.Taxable != nil && *remote.Taxable {
		taxCategory = models.ItemTaxCategoryTaxable
	}

	doc := map[string]any{
		"item_code":            remote.Name,
		"item_name":            remote.Name,
		"item_group":           pulledItemGroup,
		"is_stock_item":        0,
		"stock_uom":            "Nos",
		"standard_rate":        remote.UnitPrice,
		"custom_tax_category":  taxCategory,
		"custom_qbo_item_id":   remote.Id,
		"custom_qbo_type":      remote.Type,
		"custom_skip_qbo_sync": 1,
	}

	var created models.Item
	if err := deps.Store.CreateDoc(ctx, "Item", doc, &created); err != nil {
		return "", err
	}

	if remote.UnitPrice > 0 {
		price := map[string]any{
			"item_code":       created.Name,
			"price_list":      sellingPriceList,
			"selling":         1,
			"price_list_rate": remote.UnitPrice,
		}
		if err := deps.Store.CreateDoc(ctx, "Item Price", price, nil); err != nil {
			return "", err
		}
	}
	return created.Name, nil
}

// ensureItemGroup creates the group when it does not exist yet.
func ensureItemGroup(ctx context.Context, deps *Deps, group string) error {
	var existing struct {
		Name string `json:"name"`
	}
	err := deps.Store.GetDoc(ctx, "Item Group", group, &existing)
	if err == nil {
		return nil
	}
	var remoteErr *models.RemoteCallError
	if errors.As(err, &remoteErr) && remoteErr.StatusCode == 404 {
		return deps.Store.CreateDoc(ctx, "Item Group", map[string]any{
			"item_group_name": group,
			"is_group":        0,
		}, nil)
	}
	return err
}

// PushItemPrice sparse-updates the QBO item's unit price from the local
// selling price. The sync token is fetched fresh immediately before the
// update so a stale token cannot clobber a concurrent edit.
func PushItemPrice(ctx context.Context, deps *Deps, itemName string) error {
	item, remote, err := loadItemPair(ctx, deps, itemName)
	if err != nil {
		return err
	}

	price := item.StandardRate
	var prices []models.ItemPrice
	err = deps.Store.List(ctx, "Item Price", frappe.ListOptions{
		Filters: [][3]string{
			{"item_code", "=", item.Name},
			{"selling", "=", "1"},
		},
		Fields: []string{"name", "price_list_rate"},
		Limit:  1,
	}, &prices)
	if err != nil {
		return err
	}
	if len(prices) > 0 && prices[0].PriceListRate.IsPositive() {
		price = prices[0].PriceListRate
	}

	payload := map[string]any{
		"Id":        remote.Id,
		"SyncToken": remote.SyncToken,
		"UnitPrice": price.InexactFloat64(),
	}
	if err := deps.QBO.SparseUpdate(ctx, "item", payload, nil); err != nil {
		return err
	}
	deps.Logger.WithFields(logrus.Fields{
		"item":  item.Name,
		"price": price.String(),
	}).Info("pushed item price to QBO")
	return touchItem(ctx, deps, item.Name, item.QboItemId)
}

// PushItemCost sparse-updates the QBO item's purchase cost from the
// local valuation rate.
func PushItemCost(ctx context.Context, deps *Deps, itemName string) error {
	item, remote, err := loadItemPair(ctx, deps, itemName)
	if err != nil {
		return err
	}
	cost := item.ValuationRate
	if cost.LessThan(decimal.Zero) {
		cost = decimal.Zero
	}

	payload := map[string]any{
		"Id":           remote.Id,
		"SyncToken":    remote.SyncToken,
		"PurchaseCost": cost.InexactFloat64(),
	}
	if err := deps.QBO.SparseUpdate(ctx, "item", payload, nil); err != nil {
		return err
	}
	deps.Logger.WithFields(logrus.Fields{
		"item": item.Name,
		"cost": cost.String(),
	}).Info("pushed item cost to QBO")
	return touchItem(ctx, deps, item.Name, item.QboItemId)
}

func loadItemPair(ctx context.Context, deps *Deps, itemName string) (*models.Item, *qbo.Item, error) {
	var item models.Item
	if err := deps.Store.GetDoc(ctx, "Item", itemName, &item); err != nil {
		return nil, nil, err
	}
	if item.QboItemId == "" {
		return nil, nil, fmt.Errorf("item %s is not linked to QBO", itemName)
	}
	var remote qbo.Item
	if err := deps.QBO.Get(ctx, "item", item.QboItemId, &remote); err != nil {
		return nil, nil, err
	}
	return &item, &remote, nil
}

func touchItem(ctx context.Context, deps *Deps, name, qboItemId string) error {
	return ApplyOutcome(ctx, deps, "Item", name, Outcome{Kind: OutcomeMatched, RemoteId: qboItemId})
}
