package onboarding

import "fmt"

// stepPrompts are the re-prompt lines appended to chat replies while a step
// is still open.
var stepPrompts = map[Step]string{
	StepVision:         "What's the long-term vision for this project? A sentence or two is plenty.",
	StepLongTermGoals:  "What are the big long-term goals you're working toward? List as many as you like.",
	StepShortTermGoals: "What short-term goals would move you forward in the next few weeks?",
	StepTelegram:       "Last step: connect Telegram so I can reach you with reminders. Say \"skip\" to do it later.",
}

// StepPrompt returns the prompt text for a step.
func StepPrompt(step Step) string {
	return stepPrompts[step]
}

// StatusReply formats an answer to "where am I in onboarding?".
func StatusReply(status int) string {
	if status >= StatusComplete {
		return "Onboarding is complete — all four setup steps are done."
	}
	step, _ := NextStep(status)
	return fmt.Sprintf("You've completed %d of 4 onboarding steps. Next up: %s. %s",
		status, step, StepPrompt(step))
}
