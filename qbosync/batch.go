package qbosync

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"bitbucket.org/mmdatafocus/qbo_connector/frappe"
	"bitbucket.org/mmdatafocus/qbo_connector/models"
)

// FailureEntry is one failed entity and why.
type FailureEntry struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// SkipEntry is one entity a policy gate stopped, with its recorded status.
type SkipEntry struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Report is the batch summary a caller (UI button, cron, CLI) consumes.
// Matched covers links to existing remote records; NotFound covers
// entities that had no counterpart and were created instead.
type Report struct {
	Matched  []string       `json:"matched"`
	NotFound []string       `json:"not_found"`
	Skipped  []SkipEntry    `json:"skipped"`
	Failed   []FailureEntry `json:"failed"`
}

func (r *Report) add(name string, outcome Outcome, err error) {
	switch {
	case err != nil:
		r.Failed = append(r.Failed, FailureEntry{Name: name, Reason: err.Error()})
	case outcome.Kind == OutcomeMatched && outcome.Created:
		r.NotFound = append(r.NotFound, name)
	case outcome.Kind == OutcomeMatched:
		r.Matched = append(r.Matched, name)
	case outcome.Kind == OutcomeSkipped:
		r.Skipped = append(r.Skipped, SkipEntry{Name: name, Status: string(outcome.Status)})
	}
}

// RunCustomerBatch syncs every customer not yet in terminal success,
// sequentially. One customer's failure never aborts the rest; every
// customer lands in exactly one report bucket. The run and its failures
// are recorded in the history store when one is configured.
func RunCustomerBatch(ctx context.Context, deps *Deps, triggeredBy string) (*Report, error) {
	var customers []models.Customer
	err := deps.Store.List(ctx, "Customer", frappe.ListOptions{
		Fields: []string{"name", "custom_qbo_sync_status", "custom_qbo_customer_id"},
	}, &customers)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	startedAt := time.Now()
	run := startRun(deps, "Customer", triggeredBy, startedAt)

	for _, candidate := range customers {
		if candidate.SyncStatus == models.SyncStatusSynced && candidate.QboCustomerId != "" {
			continue
		}
		outcome, err := SyncCustomer(ctx, deps, candidate.Name)
		report.add(candidate.Name, outcome, err)
		if err != nil {
			deps.Logger.WithFields(logrus.Fields{
				"customer": candidate.Name,
				"error":    err.Error(),
			}).Error("customer sync failed")
			recordRunError(deps, run, "Customer", candidate.Name, err)
		}
	}

	finishRun(deps, run, report, startedAt)
	deps.Logger.WithFields(logrus.Fields{
		"matched":   len(report.Matched),
		"created":   len(report.NotFound),
		"skipped":   len(report.Skipped),
		"failed":    len(report.Failed),
		"triggered": triggeredBy,
	}).Info("customer batch finished")
	return report, nil
}

func startRun(deps *Deps, entityType, triggeredBy string, startedAt time.Time) *models.SyncRun {
	if deps.DB == nil {
		return nil
	}
	run := &models.SyncRun{
		RealmId:     deps.QBO.RealmId(),
		EntityType:  entityType,
		Status:      models.SyncRunStatusRunning,
		TriggeredBy: triggeredBy,
		StartedAt:   &startedAt,
	}
	if err := deps.DB.Create(run).Error; err != nil {
		deps.Logger.WithFields(logrus.Fields{"error": err.Error()}).Error("failed to record sync run")
		return nil
	}
	return run
}

func recordRunError(deps *Deps, run *models.SyncRun, entityType, entityName string, err error) {
	if deps.DB == nil || run == nil {
		return
	}
	runErr := &models.SyncRunError{
		SyncRunId:  run.ID,
		EntityType: entityType,
		EntityName: entityName,
		Message:    err.Error(),
		Retryable:  !models.IsInvalidEntity(err),
	}
	if dbErr := deps.DB.Create(runErr).Error; dbErr != nil {
		deps.Logger.WithFields(logrus.Fields{"error": dbErr.Error()}).Error("failed to record sync run error")
	}
}

func finishRun(deps *Deps, run *models.SyncRun, report *Report, startedAt time.Time) {
	if deps.DB == nil || run == nil {
		return
	}
	finishedAt := time.Now()
	status := models.SyncRunStatusSuccess
	if len(report.Failed) > 0 {
		status = models.SyncRunStatusPartial
		if len(report.Matched)+len(report.NotFound) == 0 {
			status = models.SyncRunStatusFailed
		}
	}
	update := map[string]interface{}{
		"status":         status,
		"matched":        len(report.Matched),
		"not_found":      len(report.NotFound),
		"failed":         len(report.Failed),
		"records_synced": len(report.Matched) + len(report.NotFound),
		"finished_at":    &finishedAt,
		"duration_ms":    finishedAt.Sub(startedAt).Milliseconds(),
	}
	if err := deps.DB.Model(run).Updates(update).Error; err != nil {
		deps.Logger.WithFields(logrus.Fields{"error": err.Error()}).Error("failed to finalize sync run")
	}
}
