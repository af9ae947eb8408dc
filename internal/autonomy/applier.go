package autonomy

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pantheonlabs/zeta/internal/blob"
	"github.com/pantheonlabs/zeta/internal/eventlog"
	"github.com/pantheonlabs/zeta/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Applier executes autonomy plans against the store.
type Applier struct {
	db    *gorm.DB
	blobs blob.Store
}

// ApplierOpts holds parameters for creating an Applier.
type ApplierOpts struct {
	DB    *gorm.DB
	Blobs blob.Store // required only for plans carrying file requests
}

// NewApplier creates an Applier.
func NewApplier(opts ApplierOpts) (*Applier, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("autonomy: applier: db is required")
	}
	return &Applier{db: opts.DB, blobs: opts.Blobs}, nil
}

// operation is one flattened plan entry: the event it logs and the write it
// performs when the policy applies.
type operation struct {
	kind    string
	details map[string]interface{}
	run     func(ctx context.Context) error
}

// Apply executes a plan under the given policy. Off is a total no-op with
// no logging. Shadow logs every proposed action as applied=false and writes
// nothing. Ask and auto log applied=true and perform the write. Operations
// run sequentially in fixed group order (vision, long goals, short goals,
// tasks, calendar, files); each is independent and best-effort, so a failed
// write is warned and the rest of the plan still runs.
func (a *Applier) Apply(ctx context.Context, projectID uint, plan Plan, policy Policy) {
	if policy == PolicyOff {
		return
	}
	applying := policy.applies()

	for _, op := range a.operations(projectID, plan) {
		if err := eventlog.AppendAutonomy(a.db, projectID, eventlog.ActorZeta, op.kind, op.details, applying); err != nil {
			log.Warn().Err(err).Uint("project", projectID).Str("kind", op.kind).Msg("autonomy: log action")
		}
		if !applying {
			continue
		}
		if err := op.run(ctx); err != nil {
			log.Warn().Err(err).Uint("project", projectID).Str("kind", op.kind).Msg("autonomy: apply action")
		}
	}
}

// operations flattens a plan into its dispatch sequence.
func (a *Applier) operations(projectID uint, plan Plan) []operation {
	var ops []operation

	if plan.Vision != nil && plan.Vision.NewText != "" {
		ops = append(ops, a.visionOp(projectID, *plan.Vision))
	}
	for _, c := range plan.LongTermGoals {
		ops = append(ops, a.goalOp(projectID, models.GoalLongTerm, c))
	}
	for _, c := range plan.ShortTermGoals {
		ops = append(ops, a.goalOp(projectID, models.GoalShortTerm, c))
	}
	for _, c := range plan.Tasks {
		ops = append(ops, a.taskOp(projectID, c))
	}
	for _, c := range plan.Calendar {
		ops = append(ops, a.calendarOp(projectID, c))
	}
	for _, f := range plan.Files {
		ops = append(ops, a.fileOp(projectID, f))
	}
	return ops
}

func (a *Applier) visionOp(projectID uint, c VisionChange) operation {
	return operation{
		kind:    eventlog.KindVisionUpdate,
		details: map[string]interface{}{"op": "update", "vision": c.NewText},
		run: func(ctx context.Context) error {
			// Last-write-wins, no merge.
			return a.db.Model(&models.Project{}).Where("id = ?", projectID).
				Update("vision", c.NewText).Error
		},
	}
}

func (a *Applier) goalOp(projectID uint, goalType string, c GoalChange) operation {
	kind := eventlog.KindGoalsLongUpdate
	if goalType == models.GoalShortTerm {
		kind = eventlog.KindGoalsShortUpdate
	}
	details := map[string]interface{}{"type": goalType, "description": c.Description}
	if c.ID != nil {
		details["id"] = *c.ID
	}

	switch {
	case c.Delete:
		details["op"] = "delete"
		return operation{kind: kind, details: details, run: func(ctx context.Context) error {
			// Zero matching rows is a silent no-op, not an error.
			if c.ID != nil {
				return a.db.Delete(&models.Goal{}, *c.ID).Error
			}
			return a.db.Where("project_id = ? AND goal_type = ? AND description = ?",
				projectID, goalType, c.Description).Delete(&models.Goal{}).Error
		}}
	case c.ID != nil:
		details["op"] = "update"
		return operation{kind: kind, details: details, run: func(ctx context.Context) error {
			return a.db.Model(&models.Goal{}).Where("id = ?", *c.ID).
				Update("description", c.Description).Error
		}}
	default:
		details["op"] = "create"
		return operation{kind: kind, details: details, run: func(ctx context.Context) error {
			var count int64
			err := a.db.Model(&models.Goal{}).
				Where("project_id = ? AND goal_type = ? AND description = ?",
					projectID, goalType, c.Description).Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				return nil
			}
			return a.db.Create(&models.Goal{
				ProjectID:   projectID,
				GoalType:    goalType,
				Description: c.Description,
			}).Error
		}}
	}
}

func (a *Applier) taskOp(projectID uint, c TaskChange) operation {
	details := map[string]interface{}{"title": c.Title}
	if c.ID != nil {
		details["op"] = "update"
		details["id"] = *c.ID
	} else {
		details["op"] = "create"
	}

	return operation{kind: eventlog.KindTasksUpdate, details: details, run: func(ctx context.Context) error {
		assignee := c.Assignee
		if assignee == "" {
			assignee = models.AssigneeZeta
		}

		if c.ID != nil {
			patch := map[string]interface{}{}
			if c.Title != "" {
				patch["title"] = c.Title
			}
			if c.Details != "" {
				patch["details"] = c.Details
			}
			if c.Procedure != "" {
				patch["procedure"] = c.Procedure
			}
			if c.Status != "" {
				patch["status"] = c.Status
			}
			if c.DueAt != nil {
				patch["due_at"] = c.DueAt
			}
			if len(patch) == 0 {
				return nil
			}
			return a.db.Model(&models.TaskItem{}).Where("id = ?", *c.ID).Updates(patch).Error
		}

		var count int64
		err := a.db.Model(&models.TaskItem{}).
			Where("project_id = ? AND assignee = ? AND title = ?", projectID, assignee, c.Title).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		status := c.Status
		if status == "" {
			status = models.TaskUnderConstruction
		}
		return a.db.Create(&models.TaskItem{
			ProjectID: projectID,
			Assignee:  assignee,
			Title:     c.Title,
			Details:   c.Details,
			Procedure: c.Procedure,
			Status:    status,
			DueAt:     c.DueAt,
			Source:    "autonomy",
		}).Error
	}}
}

func (a *Applier) calendarOp(projectID uint, c CalendarChange) operation {
	date, timeOfDay := SplitStart(c.StartAt)
	if c.AllDay {
		timeOfDay = nil
	}

	details := map[string]interface{}{"title": c.Title, "date": date}
	if c.ID != nil {
		details["op"] = "update"
		details["id"] = *c.ID
	} else {
		details["op"] = "create"
	}

	return operation{kind: eventlog.KindCalendarUpdate, details: details, run: func(ctx context.Context) error {
		itemType := c.Type
		if itemType == "" {
			itemType = "task"
		}

		if c.ID != nil {
			return a.db.Model(&models.CalendarItem{}).Where("id = ?", *c.ID).
				Updates(map[string]interface{}{
					"title":       c.Title,
					"type":        itemType,
					"details":     c.Notes,
					"date":        date,
					"time_of_day": timeOfDay,
				}).Error
		}

		query := a.db.Model(&models.CalendarItem{}).
			Where("project_id = ? AND title = ? AND date = ?", projectID, c.Title, date)
		if timeOfDay != nil {
			query = query.Where("time_of_day = ?", *timeOfDay)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		return a.db.Create(&models.CalendarItem{
			ProjectID: projectID,
			Type:      itemType,
			Title:     c.Title,
			Date:      date,
			TimeOfDay: timeOfDay,
			Details:   c.Notes,
		}).Error
	}}
}

func (a *Applier) fileOp(projectID uint, f FileRequest) operation {
	details := map[string]interface{}{
		"op":       "generate",
		"filename": f.Filename,
		"mime":     f.MimeType,
	}
	return operation{kind: eventlog.KindFileGenerate, details: details, run: func(ctx context.Context) error {
		if a.blobs == nil {
			return fmt.Errorf("autonomy: no blob store configured for file %q", f.Filename)
		}
		path := fmt.Sprintf("%d-%s", time.Now().Unix(), Slugify(f.Filename))
		if err := a.blobs.Upload(path, []byte(f.Content), f.MimeType); err != nil {
			return fmt.Errorf("autonomy: upload %q: %w", f.Filename, err)
		}
		doc := models.Document{
			ProjectID:   projectID,
			Filename:    f.Filename,
			MimeType:    f.MimeType,
			Description: f.Description,
			Path:        path,
			URL:         a.blobs.PublicURL(path),
		}
		if err := a.db.Create(&doc).Error; err != nil {
			return fmt.Errorf("autonomy: record document %q: %w", f.Filename, err)
		}
		return nil
	}}
}

// SplitStart splits an ISO-8601 timestamp into a YYYY-MM-DD date and an
// optional HH:MM:SS time-of-day. Tolerant of bare dates and of trailing
// zone designators.
func SplitStart(start string) (string, *string) {
	start = strings.TrimSpace(start)
	if start == "" {
		return "", nil
	}

	sep := strings.IndexAny(start, "T ")
	if sep < 0 {
		return start, nil
	}

	date := start[:sep]
	rest := start[sep+1:]
	if i := strings.IndexAny(rest, "Z+"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "-"); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return date, nil
	}
	if len(rest) == 5 {
		rest += ":00"
	}
	return date, &rest
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a filename and collapses non-alphanumeric runs to
// hyphens, preserving the extension's dot.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	ext := ""
	if i := strings.LastIndex(name, "."); i > 0 {
		ext = name[i+1:]
		name = name[:i]
	}
	name = strings.Trim(slugRe.ReplaceAllString(name, "-"), "-")
	if name == "" {
		name = "file"
	}
	if ext != "" {
		name += "." + slugRe.ReplaceAllString(ext, "")
	}
	return name
}
