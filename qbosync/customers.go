package qbosync

import (
	"context"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/qbo_connector/models"
)

// SyncCustomer runs the full per-customer pipeline: the pre-network
// Synced gate, the pending-tax gate, completeness, remote matching with
// the tax compatibility check, and creation when no counterpart exists.
// The resulting transition is written back before returning. Remote
// failures come back as a Failed outcome with the error; the Failed
// status write is best effort.
func SyncCustomer(ctx context.Context, deps *Deps, name string) (Outcome, error) {
	var customer models.Customer
	if err := deps.Store.GetDoc(ctx, "Customer", name, &customer); err != nil {
		return Failed(err), err
	}
	outcome, err := runCustomerPipeline(ctx, deps, &customer)
	if applyErr := ApplyOutcome(ctx, deps, "Customer", customer.Name, outcome); applyErr != nil {
		deps.Logger.WithFields(logrus.Fields{
			"customer": customer.Name,
			"error":    applyErr.Error(),
		}).Error("failed to record sync outcome")
		if err == nil {
			err = applyErr
		}
	}
	return outcome, err
}

func runCustomerPipeline(ctx context.Context, deps *Deps, customer *models.Customer) (Outcome, error) {
	log := deps.Logger.WithFields(logrus.Fields{"customer": customer.Name})

	// Terminal success gate, before any network I/O.
	if customer.SyncStatus == models.SyncStatusSynced && customer.QboCustomerId != "" {
		return Outcome{Kind: OutcomeNoop, RemoteId: customer.QboCustomerId, Status: models.SyncStatusSynced}, nil
	}

	if customer.TaxStatus == models.TaxStatusPending || customer.TaxStatus == "" {
		return Skipped(models.SyncStatusTaxUnknown, "tax status not decided"), nil
	}

	evaluation, err := EvaluateCustomer(customer)
	if err != nil {
		// Data-integrity problem, not a sync state: propagate without
		// touching the stored status.
		return Outcome{Kind: OutcomeNoop, Reason: err.Error()}, err
	}
	if !evaluation.Complete {
		log.WithFields(logrus.Fields{"missing": evaluation.MissingFields}).Info("customer incomplete; skipping")
		return Skipped(evaluation.Status, "missing fields"), nil
	}

	match, err := FindCustomerMatch(ctx, deps, customer)
	if err != nil {
		return Failed(err), err
	}
	if match != nil {
		if status := CheckTaxCompatibility(customer.TaxStatus, match); status != models.SyncStatusEmpty {
			log.WithFields(logrus.Fields{"qbo_customer": match.Id, "status": string(status)}).Info("remote match rejected on tax status")
			return Skipped(status, "tax status incompatible with QBO record"), nil
		}
		log.WithFields(logrus.Fields{"qbo_customer": match.Id}).Info("linked existing QBO customer")
		return Matched(match.Id), nil
	}

	payload := BuildCustomerPayload(deps, customer)
	var created struct {
		Id string `json:"Id"`
	}
	if err := deps.QBO.Create(ctx, "customer", payload, &created); err != nil {
		return Failed(err), err
	}
	if created.Id == "" {
		err := &models.RemoteCallError{System: "qbo", Op: "create customer", Detail: "response carried no Id"}
		return Failed(err), err
	}
	log.WithFields(logrus.Fields{"qbo_customer": created.Id}).Info("created QBO customer")
	return CreatedRemote(created.Id), nil
}
