package qbosync

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/qbo_connector/models"
	"bitbucket.org/mmdatafocus/qbo_connector/qbo"
)

// SyncInvoice pushes one submitted local invoice to QBO. The customer
// must already be linked; tax treatment follows the customer's status
// and the state tax table.
func SyncInvoice(ctx context.Context, deps *Deps, name string) (Outcome, error) {
	var invoice models.SalesInvoice
	if err := deps.Store.GetDoc(ctx, "Sales Invoice", name, &invoice); err != nil {
		return Failed(err), err
	}
	outcome, err := runInvoicePipeline(ctx, deps, &invoice)
	if applyErr := ApplyOutcome(ctx, deps, "Sales Invoice", invoice.Name, outcome); applyErr != nil {
		deps.Logger.WithFields(logrus.Fields{
			"invoice": invoice.Name,
			"error":   applyErr.Error(),
		}).Error("failed to record sync outcome")
		if err == nil {
			err = applyErr
		}
	}
	return outcome, err
}

func runInvoicePipeline(ctx context.Context, deps *Deps, invoice *models.SalesInvoice) (Outcome, error) {
	log := deps.Logger.WithFields(logrus.Fields{"invoice": invoice.Name})

	if invoice.DontSync == 1 {
		return Outcome{Kind: OutcomeNoop, Reason: "marked do-not-sync"}, nil
	}
	if invoice.SyncStatus == models.SyncStatusSynced && invoice.QboSalesInvoiceId != "" {
		return Outcome{Kind: OutcomeNoop, RemoteId: invoice.QboSalesInvoiceId, Status: models.SyncStatusSynced}, nil
	}
	if invoice.Docstatus != 1 {
		err := &models.InvalidEntityError{Doctype: "Sales Invoice", Name: invoice.Name, Reason: "invoice is not submitted"}
		return Outcome{Kind: OutcomeNoop, Reason: err.Error()}, err
	}

	var customer models.Customer
	if err := deps.Store.GetDoc(ctx, "Customer", invoice.Customer, &customer); err != nil {
		return Failed(err), err
	}
	if customer.QboCustomerId == "" {
		err := fmt.Errorf("customer %s is not linked to QBO; sync the customer first", invoice.Customer)
		return Failed(err), err
	}
	if customer.TaxStatus == models.TaxStatusPending || customer.TaxStatus == "" {
		return Skipped(models.SyncStatusTaxUnknown, "customer tax status not decided"), nil
	}

	taxable, err := invoiceTaxable(deps, &customer)
	if err != nil {
		// Configuration problem, not an entity problem: no status write.
		return Outcome{Kind: OutcomeNoop, Reason: err.Error()}, err
	}

	payload, err := BuildInvoicePayload(ctx, deps, invoice, taxable)
	if err != nil {
		if models.IsInvalidEntity(err) {
			return Outcome{Kind: OutcomeNoop, Reason: err.Error()}, err
		}
		return Failed(err), err
	}
	payload.CustomerRef = &qbo.Ref{Value: customer.QboCustomerId, Name: customer.CustomerName}

	var created struct {
		Id string `json:"Id"`
	}
	if err := deps.QBO.Create(ctx, "invoice", payload, &created); err != nil {
		return Failed(err), err
	}
	if created.Id == "" {
		err := &models.RemoteCallError{System: "qbo", Op: "create invoice", Detail: "response carried no Id"}
		return Failed(err), err
	}
	log.WithFields(logrus.Fields{"qbo_invoice": created.Id, "taxable": taxable}).Info("created QBO invoice")
	return CreatedRemote(created.Id), nil
}

// invoiceTaxable decides whether the invoice goes out with tax. Exempt
// customers never collect; otherwise the customer's state decides via
// the configured table, and a state the table does not know is a
// configuration error rather than a silent default.
func invoiceTaxable(deps *Deps, customer *models.Customer) (bool, error) {
	if customer.TaxStatus == models.TaxStatusExempt {
		return false, nil
	}
	taxed, known := deps.Settings.StateCollectsTax(customer.State)
	if !known {
		return false, &models.MissingConfigurationError{
			Field:  "state tax table",
			Reason: fmt.Sprintf("state %q is not in the table", customer.State),
		}
	}
	return taxed, nil
}
