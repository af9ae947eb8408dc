// Package eventlog writes and queries the append-only project event log.
package eventlog

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pantheonlabs/zeta/internal/models"
	"gorm.io/gorm"
)

// Actors.
const (
	ActorUser = "user"
	ActorZeta = "zeta"
)

// Event kinds. The vocabulary is closed: the onboarding status engine reads
// specific kinds back out of the log, so write paths must use these
// constants rather than ad-hoc strings.
const (
	KindVisionUpdate     = "project.vision.update"
	KindGoalsLongUpdate  = "project.goals.long.update"
	KindGoalsShortUpdate = "project.goals.short.update"
	KindTasksUpdate      = "project.tasks.update"
	KindCalendarUpdate   = "project.calendar.update"
	KindFileGenerate     = "project.files.generate"
	KindAPIConnect       = "api.connect"
	KindStepSkip         = "onboarding.step.skip"
	KindStatusUpdate     = "onboarding.status.update"
	KindChatMessage      = "chat.message"
	KindReminderSent     = "reminder.sent"
)

// Append writes one event row with applied=true. Details may be nil.
func Append(db *gorm.DB, projectID uint, actor, kind string, details map[string]interface{}) error {
	return AppendAutonomy(db, projectID, actor, kind, details, true)
}

// AppendAutonomy writes one event row with an explicit applied flag. Rows
// are immutable once written.
func AppendAutonomy(db *gorm.DB, projectID uint, actor, kind string, details map[string]interface{}, applied bool) error {
	payload := "{}"
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("eventlog: marshal details for %s: %w", kind, err)
		}
		payload = string(data)
	}
	row := models.EventLog{
		ProjectID: projectID,
		Actor:     actor,
		Kind:      kind,
		Details:   payload,
		Applied:   applied,
	}
	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("eventlog: append %s: %w", kind, err)
	}
	return nil
}

// LatestByKind returns the most recent event of the given kind for a
// project, or nil when none exists.
func LatestByKind(db *gorm.DB, projectID uint, kind string) (*models.EventLog, error) {
	var row models.EventLog
	err := db.Where("project_id = ? AND kind = ?", projectID, kind).
		Order("created_at DESC, id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("eventlog: latest %s: %w", kind, err)
	}
	return &row, nil
}

// ListByKind returns all events of the given kind for a project, newest
// first.
func ListByKind(db *gorm.DB, projectID uint, kind string) ([]models.EventLog, error) {
	var rows []models.EventLog
	err := db.Where("project_id = ? AND kind = ?", projectID, kind).
		Order("created_at DESC, id DESC").Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("eventlog: list %s: %w", kind, err)
	}
	return rows, nil
}

// Recent returns up to limit events for a project, newest first.
func Recent(db *gorm.DB, projectID uint, limit int) ([]models.EventLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.EventLog
	err := db.Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("eventlog: recent: %w", err)
	}
	return rows, nil
}

// Details unmarshals an event's JSON payload, returning an empty map when
// the payload is missing or malformed.
func Details(row *models.EventLog) map[string]interface{} {
	out := map[string]interface{}{}
	if row == nil || row.Details == "" {
		return out
	}
	if err := json.Unmarshal([]byte(row.Details), &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}
