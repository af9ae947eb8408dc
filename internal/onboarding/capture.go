package onboarding

import (
	"context"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/pantheonlabs/zeta/internal/eventlog"
	"github.com/pantheonlabs/zeta/internal/llm"
	"github.com/pantheonlabs/zeta/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// visionMinLength gates the vision extraction call: shorter messages are
// never sent to the provider.
const visionMinLength = 40

// visionKeywords: at least one must appear for the vision step to attempt
// extraction. Avoids burning a model call on unrelated chat turns.
var visionKeywords = []string{
	"vision", "goal", "aim", "plan", "project",
	"want to", "would like to", "my focus is", "my aim is",
}

// visionLeadIns are throw-away phrases stripped from the front of an
// extracted vision statement.
var visionLeadIns = []string{
	"the project aims to",
	"this project aims to",
	"the vision is to",
	"the vision is",
	"our vision is to",
	"our vision is",
	"my vision is to",
	"my vision is",
}

// CaptureResult reports what, if anything, was captured from one message.
type CaptureResult struct {
	Captured bool
	Step     Step     // the step the capture targeted
	Vision   string   // set when Step == StepVision
	Goals    []string // net-new goals when a goal step captured
	Status   int      // effective status after the attempt
	Next     Step     // next open step, "" when complete
}

// Capture attempts to extract the datum required by the project's current
// onboarding step from the message, using the completion provider in
// strict-JSON mode. On success it writes the project fields, upserts goal
// rows, appends the step's event, and advances the effective status by one.
// Every failure mode (provider error, malformed JSON, nothing extracted)
// collapses to Captured=false with the status unchanged.
func Capture(ctx context.Context, db *gorm.DB, completer llm.Completer, model string, project *models.Project, message string) CaptureResult {
	result := CaptureResult{Status: project.OnboardingStatus}

	step, ok := NextStep(project.OnboardingStatus)
	if !ok {
		return result
	}
	result.Step = step

	switch step {
	case StepVision:
		captureVision(ctx, db, completer, model, project, message, &result)
	case StepLongTermGoals:
		captureGoals(ctx, db, completer, model, project, message, models.GoalLongTerm, &result)
	case StepShortTermGoals:
		captureGoals(ctx, db, completer, model, project, message, models.GoalShortTerm, &result)
	case StepTelegram:
		// Telegram connection happens through the integrations flow, not
		// chat extraction.
	}

	if result.Captured {
		result.Status = project.OnboardingStatus + 1
	}
	result.Next, _ = NextStep(result.Status)
	return result
}

// visionResponse is the strict-JSON schema for the vision step.
type visionResponse struct {
	HasVision bool   `json:"has_vision"`
	Vision    string `json:"vision"`
}

// goalsResponse covers both goal-step schemas; only one of the has_* keys
// is present per call.
type goalsResponse struct {
	HasLongTermGoals  bool     `json:"has_long_term_goals"`
	HasShortTermGoals bool     `json:"has_short_term_goals"`
	Goals             []string `json:"goals"`
}

func captureVision(ctx context.Context, db *gorm.DB, completer llm.Completer, model string, project *models.Project, message string, result *CaptureResult) {
	if len(message) < visionMinLength || !containsAny(strings.ToLower(message), visionKeywords) {
		return
	}

	raw := complete(ctx, completer, model,
		`You extract a project vision statement from a user's chat message. `+
			`Respond with strict JSON: {"has_vision": boolean, "vision": string}. `+
			`Set has_vision to false unless the message clearly states a vision for the project.`,
		message)
	var resp visionResponse
	decodeLoose(raw, &resp)
	if !resp.HasVision || strings.TrimSpace(resp.Vision) == "" {
		return
	}

	vision := NormalizeVision(resp.Vision)
	if err := db.Model(project).Update("vision", vision).Error; err != nil {
		log.Warn().Err(err).Uint("project", project.ID).Msg("onboarding: capture vision: persist")
		return
	}
	project.Vision = vision

	if err := eventlog.Append(db, project.ID, eventlog.ActorUser, eventlog.KindVisionUpdate, map[string]interface{}{
		"vision": vision,
	}); err != nil {
		log.Warn().Err(err).Uint("project", project.ID).Msg("onboarding: capture vision: log event")
	}

	result.Captured = true
	result.Vision = vision
}

func captureGoals(ctx context.Context, db *gorm.DB, completer llm.Completer, model string, project *models.Project, message, goalType string, result *CaptureResult) {
	horizon := "long-term"
	key := "has_long_term_goals"
	if goalType == models.GoalShortTerm {
		horizon = "short-term"
		key = "has_short_term_goals"
	}

	raw := complete(ctx, completer, model,
		`You extract `+horizon+` project goals from a user's chat message. `+
			`Respond with strict JSON: {"`+key+`": boolean, "goals": [string]}. `+
			`Set `+key+` to false unless the message states at least one concrete goal.`,
		message)
	var resp goalsResponse
	decodeLoose(raw, &resp)

	has := resp.HasLongTermGoals
	if goalType == models.GoalShortTerm {
		has = resp.HasShortTermGoals
	}
	if !has || len(resp.Goals) == 0 {
		return
	}

	var cleaned []string
	for _, g := range resp.Goals {
		if g = StripBullet(g); g != "" {
			cleaned = append(cleaned, g)
		}
	}
	if len(cleaned) == 0 {
		return
	}

	// Existing goals are fetched fresh each call; deduplication is case and
	// whitespace insensitive.
	var existing []models.Goal
	if err := db.Where("project_id = ? AND goal_type = ?", project.ID, goalType).
		Find(&existing).Error; err != nil {
		log.Warn().Err(err).Uint("project", project.ID).Msg("onboarding: capture goals: load existing")
		return
	}
	seen := make(map[string]bool, len(existing))
	merged := make([]string, 0, len(existing)+len(cleaned))
	for _, g := range existing {
		seen[normalizeGoalKey(g.Description)] = true
		merged = append(merged, g.Description)
	}

	var fresh []string
	for _, g := range cleaned {
		k := normalizeGoalKey(g)
		if seen[k] {
			continue
		}
		seen[k] = true
		fresh = append(fresh, g)
		merged = append(merged, g)
	}
	if len(fresh) == 0 {
		return
	}

	column := "long_term_goals"
	if goalType == models.GoalShortTerm {
		column = "short_term_goals"
	}
	joined := strings.Join(merged, "\n")
	if err := db.Model(project).Update(column, joined).Error; err != nil {
		log.Warn().Err(err).Uint("project", project.ID).Msg("onboarding: capture goals: persist column")
		return
	}
	if goalType == models.GoalLongTerm {
		project.LongTermGoals = joined
	} else {
		project.ShortTermGoals = joined
	}

	for _, g := range fresh {
		row := models.Goal{ProjectID: project.ID, GoalType: goalType, Description: g}
		if err := db.Create(&row).Error; err != nil {
			log.Warn().Err(err).Uint("project", project.ID).Str("goal", g).Msg("onboarding: capture goals: insert")
		}
	}

	kind := eventlog.KindGoalsLongUpdate
	if goalType == models.GoalShortTerm {
		kind = eventlog.KindGoalsShortUpdate
	}
	if err := eventlog.Append(db, project.ID, eventlog.ActorUser, kind, map[string]interface{}{
		"goals": fresh,
	}); err != nil {
		log.Warn().Err(err).Uint("project", project.ID).Msg("onboarding: capture goals: log event")
	}

	result.Captured = true
	result.Goals = fresh
}

// complete runs one strict-JSON completion, returning "" on any provider
// failure.
func complete(ctx context.Context, completer llm.Completer, model, system, user string) string {
	out, err := completer.Complete(ctx, llm.Request{
		Model: model,
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		JSONMode: true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("onboarding: extraction call failed")
		return ""
	}
	return out
}

// decodeLoose unmarshals provider output, treating malformed JSON as an
// empty object.
func decodeLoose(raw string, v interface{}) {
	if raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Warn().Err(err).Msg("onboarding: malformed extraction JSON")
	}
}

// NormalizeVision cleans an extracted vision statement: wrapping quotes and
// throw-away lead-ins go, the first letter is capitalized, and terminal
// punctuation is ensured.
func NormalizeVision(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"'`)
	v = strings.TrimSpace(v)

	lower := strings.ToLower(v)
	for _, lead := range visionLeadIns {
		if strings.HasPrefix(lower, lead) {
			v = strings.TrimSpace(v[len(lead):])
			break
		}
	}
	if v == "" {
		return v
	}

	runes := []rune(v)
	runes[0] = unicode.ToUpper(runes[0])
	v = string(runes)

	if !strings.ContainsAny(v[len(v)-1:], ".!?") {
		v += "."
	}
	return v
}

func normalizeGoalKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
