package models

import "time"

// EventLog is the append-only audit trail. Rows are created by every
// write-producing operation and never updated or deleted. Applied records
// whether the corresponding write actually happened (false for shadow-mode
// autonomy proposals).
type EventLog struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID uint   `gorm:"not null;index:idx_event_project_kind"`
	Actor     string `gorm:"size:16;not null"` // "user" or "zeta"
	Kind      string `gorm:"size:64;not null;index:idx_event_project_kind"`
	Details   string `gorm:"type:text"` // JSON payload
	// No column default: a default tag makes GORM omit false on create,
	// which would silently flip shadow proposals to applied.
	Applied   bool
	CreatedAt time.Time `gorm:"index"`
}
