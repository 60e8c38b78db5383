package qbosync

import (
	"context"
	"strconv"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbo"
)

// FindCustomerMatch locates at most one QBO counterpart for a local
// customer. Tier one is an exact DisplayName query; tier two, only when
// the local address is complete, scans the full customer collection for
// a structural address match. Multiple equally good matches resolve to
// the lowest QBO id, logged as a warning.
func FindCustomerMatch(ctx context.Context, deps *Deps, c *models.Customer) (*qbo.Customer, error) {
	byName, err := deps.QBO.QueryCustomersByDisplayName(ctx, c.CustomerName)
	if err != nil {
		return nil, err
	}
	if len(byName) > 0 {
		return pickMatch(deps, c, byName), nil
	}

	local := c.Address()
	if !local.Complete() {
		return nil, nil
	}

	all, err := deps.QBO.AllCustomers(ctx)
	if err != nil {
		return nil, err
	}
	var matches []qbo.Customer
	for _, remote := range all {
		if MatchAddress(local, remote.BillAddr) {
			matches = append(matches, remote)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return pickMatch(deps, c, matches), nil
}

// pickMatch returns the single match, or the lowest-id one with a
// warning when the remote side has duplicates.
func pickMatch(deps *Deps, c *models.Customer, matches []qbo.Customer) *qbo.Customer {
	best := matches[0]
	if len(matches) > 1 {
		for _, m := range matches[1:] {
			if qboIdLess(m.Id, best.Id) {
				best = m
			}
		}
		deps.Logger.WithFields(logrus.Fields{
			"customer": c.Name,
			"matches":  len(matches),
			"chosen":   best.Id,
		}).Warn("multiple QBO customers match; linking lowest id")
	}
	return &best
}

func qboIdLess(a, b string) bool {
	an, aerr := strconv.ParseInt(a, 10, 64)
	bn, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return an < bn
	}
	return a < b
}

// CheckTaxCompatibility gates linking on tax agreement: a local exempt
// customer must pair with a non-taxable remote record and a taxed one
// with a taxable record. An absent remote flag never counts as
// agreement. Pending local status is unknown regardless of the remote
// value. Returns the empty status when compatible.
func CheckTaxCompatibility(local models.TaxStatus, remote *qbo.Customer) models.SyncStatus {
	switch local {
	case models.TaxStatusExempt:
		if remote.Taxable != nil && !*remote.Taxable {
			return models.SyncStatusEmpty
		}
		return models.SyncStatusTaxMismatch
	case models.TaxStatusTaxed:
		if remote.Taxable != nil && *remote.Taxable {
			return models.SyncStatusEmpty
		}
		return models.SyncStatusTaxMismatch
	default:
		return models.SyncStatusTaxUnknown
	}
}
