package models

import (
	"time"

	"gorm.io/gorm"
)

// SyncRun is one recorded batch (or single-entity) sync attempt. Entity sync
// state itself lives on the ERP records; these rows exist for diagnostics
// and the run-history API only.
type SyncRun struct {
	ID            uint       `gorm:"primary_key" json:"id"`
	RealmId       string     `gorm:"index;size:64" json:"realm_id"`
	EntityType    string     `gorm:"index;size:50;not null" json:"entity_type"`
	Status        string     `gorm:"size:20;not null" json:"status"`
	TriggeredBy   string     `gorm:"size:20" json:"triggered_by"`
	Matched       int        `json:"matched"`
	NotFound      int        `json:"not_found"`
	Failed        int        `json:"failed"`
	RecordsSynced int        `json:"records_synced"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	DurationMs    int64      `json:"duration_ms"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// SyncRunError is one failed entity within a run, with the captured reason.
type SyncRunError struct {
	ID         uint      `gorm:"primary_key" json:"id"`
	SyncRunId  uint      `gorm:"index;not null" json:"sync_run_id"`
	EntityType string    `gorm:"size:50" json:"entity_type"`
	EntityName string    `gorm:"size:255" json:"entity_name"`
	Message    string    `gorm:"type:text" json:"message"`
	Retryable  bool      `gorm:"default:true" json:"retryable"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&SyncRun{},
		&SyncRunError{},
	)
}
