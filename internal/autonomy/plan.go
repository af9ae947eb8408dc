// Package autonomy applies assistant-proposed change plans against the
// store under a graded trust policy.
package autonomy

import (
	"fmt"
	"time"
)

// Policy controls whether proposed actions are ignored, merely logged, or
// logged and executed.
type Policy string

// Autonomy policies. Ask and auto write identically here: for ask, the
// caller is expected to obtain user confirmation before constructing the
// plan at all.
const (
	PolicyOff    Policy = "off"
	PolicyShadow Policy = "shadow"
	PolicyAsk    Policy = "ask"
	PolicyAuto   Policy = "auto"
)

// ParsePolicy validates a policy string.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyOff, PolicyShadow, PolicyAsk, PolicyAuto:
		return Policy(s), nil
	}
	return "", fmt.Errorf("autonomy: unknown policy %q", s)
}

// applies reports whether the policy executes writes (vs logging only).
func (p Policy) applies() bool {
	return p == PolicyAsk || p == PolicyAuto
}

// Plan is a transient batch of proposed changes. It is constructed per
// invocation from the assistant's tool call, consumed once, and discarded.
type Plan struct {
	Vision         *VisionChange    `json:"vision,omitempty"`
	LongTermGoals  []GoalChange     `json:"long_term_goals,omitempty"`
	ShortTermGoals []GoalChange     `json:"short_term_goals,omitempty"`
	Tasks          []TaskChange     `json:"tasks,omitempty"`
	Calendar       []CalendarChange `json:"calendar,omitempty"`
	Files          []FileRequest    `json:"files,omitempty"`
}

// VisionChange replaces the project vision outright (last-write-wins).
type VisionChange struct {
	NewText string `json:"new_text"`
}

// GoalChange is one goal operation: a delete when Delete is set, an update
// when ID is present, otherwise an idempotent create.
type GoalChange struct {
	ID          *uint  `json:"id,omitempty"`
	Description string `json:"description"`
	Delete      bool   `json:"delete,omitempty"`
}

// TaskChange creates a task (no ID) or updates one (ID present).
type TaskChange struct {
	ID        *uint      `json:"id,omitempty"`
	Title     string     `json:"title"`
	Details   string     `json:"details,omitempty"`
	Procedure string     `json:"procedure,omitempty"`
	Status    string     `json:"status,omitempty"`
	Assignee  string     `json:"assignee,omitempty"` // zeta or user
	DueAt     *time.Time `json:"due_at,omitempty"`
}

// CalendarChange creates or updates a calendar item. StartAt is an ISO-8601
// timestamp; its date and time-of-day are stored separately, and the time
// is discarded when AllDay is set.
type CalendarChange struct {
	ID      *uint  `json:"id,omitempty"`
	Title   string `json:"title"`
	Type    string `json:"type,omitempty"`
	Notes   string `json:"notes,omitempty"`
	StartAt string `json:"start_at"`
	AllDay  bool   `json:"all_day,omitempty"`
}

// FileRequest asks for a file to be generated into blob storage.
type FileRequest struct {
	Filename    string `json:"filename"`
	MimeType    string `json:"mime_type,omitempty"`
	Content     string `json:"content"`
	Description string `json:"description,omitempty"`
}
