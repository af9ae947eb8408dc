// Package onboarding derives, persists, and advances a project's guided
// setup progress, and captures step data out of free-form chat.
package onboarding

// Step is one of the four gated setup stages.
type Step string

// Onboarding steps in order. Each maps to the status value reached by
// completing it: vision=1, long_term_goals=2, short_term_goals=3,
// telegram=4. Status 0 means no step completed yet.
const (
	StepVision         Step = "vision"
	StepLongTermGoals  Step = "long_term_goals"
	StepShortTermGoals Step = "short_term_goals"
	StepTelegram       Step = "telegram"
)

// StatusComplete is the status of a fully onboarded project.
const StatusComplete = 4

var stepOrder = [4]Step{StepVision, StepLongTermGoals, StepShortTermGoals, StepTelegram}

// NextStep returns the step a project at the given status should work on
// next. ok is false when onboarding is complete.
func NextStep(status int) (Step, bool) {
	if status < 0 {
		status = 0
	}
	if status >= StatusComplete {
		return "", false
	}
	return stepOrder[status], true
}

// Index returns the status value reached by completing a step (1-4), or 0
// for an unknown step.
func Index(step Step) int {
	for i, s := range stepOrder {
		if s == step {
			return i + 1
		}
	}
	return 0
}
