package qbosync

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/qbo_connector/models"
)

type OutcomeKind int

const (
	// OutcomeNoop: the entity was already Synced with a remote id; nothing
	// was done and nothing is written.
	OutcomeNoop OutcomeKind = iota
	// OutcomeMatched: linked to an existing remote record, or to one just
	// created (Created=true).
	OutcomeMatched
	// OutcomeNotFound: no remote match and no create was attempted; the
	// stored status is left for the next run.
	OutcomeNotFound
	// OutcomeSkipped: a policy gate stopped the pipeline; Status carries
	// the reason.
	OutcomeSkipped
	// OutcomeFailed: a remote call failed; retryable on the next run.
	OutcomeFailed
)

// Outcome is what one entity's pipeline run produced. The tracker turns
// it into at most one write against the ERP record.
type Outcome struct {
	Kind     OutcomeKind
	RemoteId string
	Created  bool
	Status   models.SyncStatus
	Reason   string
}

func Matched(remoteId string) Outcome {
	return Outcome{Kind: OutcomeMatched, RemoteId: remoteId, Status: models.SyncStatusSynced}
}

func CreatedRemote(remoteId string) Outcome {
	return Outcome{Kind: OutcomeMatched, RemoteId: remoteId, Created: true, Status: models.SyncStatusSynced}
}

func Skipped(status models.SyncStatus, reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Status: status, Reason: reason}
}

func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Status: models.SyncStatusFailed, Reason: err.Error()}
}

// syncFields maps each doctype to its sync-tracking field names.
type syncFields struct {
	remoteId     string
	status       string
	lastSyncedAt string
}

var trackerFields = map[string]syncFields{
	"Customer": {
		remoteId:     "custom_qbo_customer_id",
		status:       "custom_qbo_sync_status",
		lastSyncedAt: "custom_qbo_last_synced_at",
	},
	"Sales Invoice": {
		remoteId: "custom_qbo_sales_invoice_id",
		status:   "custom_sync_status",
	},
	"Payment Entry": {
		remoteId: "custom_qbo_payment_id",
		status:   "custom_sync_status",
	},
	"Item": {
		remoteId:     "custom_qbo_item_id",
		lastSyncedAt: "custom_qbo_last_synced_at",
	},
}

// ApplyOutcome writes the outcome's transition to the ERP record. Noop
// and NotFound write nothing; every other outcome writes exactly once.
func ApplyOutcome(ctx context.Context, deps *Deps, doctype, name string, outcome Outcome) error {
	if outcome.Kind == OutcomeNoop || outcome.Kind == OutcomeNotFound {
		return nil
	}
	fields, ok := trackerFields[doctype]
	if !ok {
		return &models.InvalidEntityError{Doctype: doctype, Name: name, Reason: "doctype has no sync tracking fields"}
	}

	update := map[string]any{}
	if fields.status != "" && outcome.Status != models.SyncStatusEmpty {
		update[fields.status] = string(outcome.Status)
	}
	if outcome.Kind == OutcomeMatched {
		update[fields.remoteId] = outcome.RemoteId
		if fields.lastSyncedAt != "" {
			update[fields.lastSyncedAt] = time.Now().UTC().Format("2006-01-02 15:04:05")
		}
	}
	if len(update) == 0 {
		return nil
	}
	return deps.Store.UpdateDoc(ctx, doctype, name, update)
}
