package models

import "time"

// Goal types.
const (
	GoalLongTerm  = "long_term"
	GoalShortTerm = "short_term"
)

// Goal is one long-term or short-term project goal. Uniqueness is functional
// on (project, type, description): the applier and the extraction layer must
// not insert a duplicate description within a type. The index makes the
// guard cheap but the check itself is best-effort (no transaction).
type Goal struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID   uint   `gorm:"not null;index:idx_goal_project_type"`
	GoalType    string `gorm:"size:16;not null;index:idx_goal_project_type"` // long_term, short_term
	Description string `gorm:"type:text;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
