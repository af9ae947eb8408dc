// Package intent classifies chat messages with keyword and regex signals.
// Each predicate is an independent boolean test; several may hold for the
// same message and callers decide precedence.
package intent

import (
	"regexp"
	"strings"
)

// Intents holds the calendar-action signals for one message.
type Intents struct {
	WantsAdd            bool
	WantsModify         bool
	WantsCalendarAction bool
}

var addKeywords = []string{
	"calendar", "schedule", "remind me", "reminder", "add", "put",
}

var modifyKeywords = []string{
	"fix", "move", "change", "update", "reschedule",
}

// skipPhrases are matched exactly after trim and lowercase.
var skipPhrases = map[string]bool{
	"skip":           true,
	"skip it":        true,
	"skip this":      true,
	"skip this step": true,
	"skip for now":   true,
	"next":           true,
	"pass":           true,
}

var (
	doneRe     = regexp.MustCompile(`\b(done|finished|completed?|all set|set up|configured)\b`)
	statusWord = regexp.MustCompile(`\b(step|status|progress)\b`)
)

// Classify reports whether the message asks to add or modify something on
// the calendar.
func Classify(text string) Intents {
	text = strings.ToLower(text)
	var in Intents
	for _, k := range addKeywords {
		if strings.Contains(text, k) {
			in.WantsAdd = true
			break
		}
	}
	for _, k := range modifyKeywords {
		if strings.Contains(text, k) {
			in.WantsModify = true
			break
		}
	}
	in.WantsCalendarAction = in.WantsAdd || in.WantsModify
	return in
}

// IsSkip reports whether the message is one of the canonical skip phrases.
func IsSkip(text string) bool {
	return skipPhrases[strings.ToLower(strings.TrimSpace(text))]
}

// IsDone reports whether the message claims a step is finished.
func IsDone(text string) bool {
	return doneRe.MatchString(strings.ToLower(text))
}

// IsStatusQuestion reports whether the message asks where onboarding stands.
func IsStatusQuestion(text string) bool {
	text = strings.ToLower(text)
	return strings.Contains(text, "onboarding") && statusWord.MatchString(text)
}
