package onboarding

import (
	"fmt"
	"strings"

	"github.com/pantheonlabs/zeta/internal/eventlog"
	"github.com/pantheonlabs/zeta/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Derive computes the canonical onboarding status for a project as the
// maximum of two independently computed candidates: one read off the
// Project row's fields, one read off the event log. Some write paths update
// the row directly while others only emit events, so either source alone
// can lag; taking the max reflects the most progress observed on any
// channel and never regresses. Derive is total: read failures are warned
// and the affected candidate treated as 0.
func Derive(db *gorm.DB, projectID uint) int {
	fromData := 0
	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		log.Warn().Err(err).Uint("project", projectID).Msg("onboarding: derive: load project")
	} else {
		fromData = deriveFromProject(&project)
	}

	fromLog := deriveFromLog(db, projectID)
	if fromLog > fromData {
		return fromLog
	}
	return fromData
}

// deriveFromProject inspects the Project row's own fields.
func deriveFromProject(p *models.Project) int {
	status := 0
	if strings.TrimSpace(p.Vision) != "" {
		status = 1
	}
	if len(SplitGoalLines(p.LongTermGoals)) > 0 {
		status = 2
	}
	if len(SplitGoalLines(p.ShortTermGoals)) > 0 {
		status = 3
	}
	if p.TelegramConnected {
		status = StatusComplete
	}
	return status
}

// deriveFromLog inspects the historical event log. Each lookup failure is
// warned and contributes nothing to the candidate.
func deriveFromLog(db *gorm.DB, projectID uint) int {
	status := 0

	checks := []struct {
		kind  string
		level int
	}{
		{eventlog.KindVisionUpdate, 1},
		{eventlog.KindGoalsLongUpdate, 2},
		{eventlog.KindGoalsShortUpdate, 3},
	}
	for _, c := range checks {
		row, err := eventlog.LatestByKind(db, projectID, c.kind)
		if err != nil {
			log.Warn().Err(err).Uint("project", projectID).Msg("onboarding: derive: read log")
			continue
		}
		if row != nil && c.level > status {
			status = c.level
		}
	}

	// A later connect for another provider must not mask an earlier
	// Telegram connect, so scan all api.connect rows for a match.
	rows, err := eventlog.ListByKind(db, projectID, eventlog.KindAPIConnect)
	if err != nil {
		log.Warn().Err(err).Uint("project", projectID).Msg("onboarding: derive: read log")
		return status
	}
	for i := range rows {
		details := eventlog.Details(&rows[i])
		provider, _ := details["provider"].(string)
		state, _ := details["status"].(string)
		if strings.EqualFold(provider, "telegram") && state == "connected" {
			status = StatusComplete
			break
		}
	}
	return status
}

// Sync derives the canonical status and persists it to the Project row when
// it differs from the stored value. Returns the (possibly updated) status.
func Sync(db *gorm.DB, projectID uint) (int, error) {
	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		return 0, fmt.Errorf("onboarding: sync: load project %d: %w", projectID, err)
	}

	derived := Derive(db, projectID)
	prev := project.OnboardingStatus
	if derived == prev {
		return derived, nil
	}

	// Update writes derived back into the struct, so read prev first.
	if err := db.Model(&project).Update("onboarding_status", derived).Error; err != nil {
		return prev, fmt.Errorf("onboarding: sync: persist status: %w", err)
	}
	if err := eventlog.Append(db, projectID, eventlog.ActorZeta, eventlog.KindStatusUpdate, map[string]interface{}{
		"from": prev,
		"to":   derived,
	}); err != nil {
		log.Warn().Err(err).Uint("project", projectID).Msg("onboarding: sync: log status change")
	}

	if derived >= StatusComplete {
		markComplete(db, projectID)
	}
	return derived, nil
}

// Skip marks the project's active step as passed without its data and
// persists the new status immediately. Returns the new status.
func Skip(db *gorm.DB, project *models.Project) (int, error) {
	step, ok := NextStep(project.OnboardingStatus)
	if !ok {
		return project.OnboardingStatus, nil
	}

	next := Index(step)
	if project.OnboardingStatus > next {
		next = project.OnboardingStatus
	}

	if err := db.Model(project).Update("onboarding_status", next).Error; err != nil {
		return project.OnboardingStatus, fmt.Errorf("onboarding: skip %s: %w", step, err)
	}
	project.OnboardingStatus = next

	if err := eventlog.Append(db, project.ID, eventlog.ActorUser, eventlog.KindStepSkip, map[string]interface{}{
		"step":   string(step),
		"status": next,
	}); err != nil {
		log.Warn().Err(err).Uint("project", project.ID).Msg("onboarding: skip: log event")
	}

	if next >= StatusComplete {
		markComplete(db, project.ID)
	}
	return next, nil
}

// markComplete fans the completion flag out to the project summary row.
// Best-effort: a failure is warned, not returned.
func markComplete(db *gorm.DB, projectID uint) {
	var summary models.ProjectSummary
	err := db.Where(models.ProjectSummary{ProjectID: projectID}).
		Assign(models.ProjectSummary{OnboardingComplete: true}).
		FirstOrCreate(&summary).Error
	if err != nil {
		log.Warn().Err(err).Uint("project", projectID).Msg("onboarding: mark complete")
	}
}

// SplitGoalLines splits a stored goal text column into individual goal
// strings: one per line, leading bullet markers stripped, blanks dropped.
func SplitGoalLines(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = StripBullet(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// StripBullet removes a leading list marker ("-", "*", "•", "1.", "2)")
// and surrounding whitespace from a goal line.
func StripBullet(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*•· \t")
	if i := strings.IndexAny(line, ".)"); i > 0 && i <= 2 && isDigits(line[:i]) {
		line = line[i+1:]
	}
	return strings.TrimSpace(line)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
