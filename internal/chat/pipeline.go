// Package chat routes an incoming project message through the capture
// heuristics and the onboarding flow, producing the reply text.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/pantheonlabs/zeta/internal/calendar"
	"github.com/pantheonlabs/zeta/internal/eventlog"
	"github.com/pantheonlabs/zeta/internal/intent"
	"github.com/pantheonlabs/zeta/internal/llm"
	"github.com/pantheonlabs/zeta/internal/models"
	"github.com/pantheonlabs/zeta/internal/onboarding"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// nowFunc supplies the reference "now" for date resolution; overridable in
// tests.
type nowFunc func() time.Time

func defaultNow() time.Time { return time.Now() }

// Pipeline handles one chat turn for a project.
type Pipeline struct {
	db        *gorm.DB
	completer llm.Completer
	model     string
	now       nowFunc
}

// PipelineOpts holds parameters for creating a Pipeline.
type PipelineOpts struct {
	DB        *gorm.DB
	Completer llm.Completer
	Model     string
	Now       nowFunc // defaults to time.Now
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts PipelineOpts) (*Pipeline, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("chat: pipeline: db is required")
	}
	if opts.Completer == nil {
		return nil, fmt.Errorf("chat: pipeline: completer is required")
	}
	now := opts.Now
	if now == nil {
		now = defaultNow
	}
	return &Pipeline{db: opts.DB, completer: opts.Completer, model: opts.Model, now: now}, nil
}

// Handle processes one user message and returns the reply text. Order:
// status questions are answered first, then the calendar auto-capture
// heuristic gets a chance, then the onboarding flow (skip or extraction)
// while setup is incomplete, and finally a plain assistant completion once
// the project is fully onboarded.
func (p *Pipeline) Handle(ctx context.Context, projectID uint, message string) (string, error) {
	if err := eventlog.Append(p.db, projectID, eventlog.ActorUser, eventlog.KindChatMessage, map[string]interface{}{
		"text": message,
	}); err != nil {
		log.Warn().Err(err).Uint("project", projectID).Msg("chat: log message")
	}

	if intent.IsStatusQuestion(message) {
		status, err := onboarding.Sync(p.db, projectID)
		if err != nil {
			return "", err
		}
		return onboarding.StatusReply(status), nil
	}

	if res := calendar.AutoCapture(p.db, projectID, message, p.now()); res.Handled {
		return res.Reply, nil
	}

	status, err := onboarding.Sync(p.db, projectID)
	if err != nil {
		return "", err
	}
	if status < onboarding.StatusComplete {
		return p.handleOnboarding(ctx, projectID, message)
	}
	return p.assistantReply(ctx, projectID, message), nil
}

// handleOnboarding runs the skip or extraction path for the active step.
func (p *Pipeline) handleOnboarding(ctx context.Context, projectID uint, message string) (string, error) {
	var project models.Project
	if err := p.db.First(&project, projectID).Error; err != nil {
		return "", fmt.Errorf("chat: load project %d: %w", projectID, err)
	}

	step, _ := onboarding.NextStep(project.OnboardingStatus)

	if intent.IsSkip(message) {
		status, err := onboarding.Skip(p.db, &project)
		if err != nil {
			return "", err
		}
		if next, ok := onboarding.NextStep(status); ok {
			return fmt.Sprintf("Okay, skipping %s. %s", step, onboarding.StepPrompt(next)), nil
		}
		return "Okay, skipping that. That's the whole setup — you're fully onboarded.", nil
	}

	result := onboarding.Capture(ctx, p.db, p.completer, p.model, &project, message)
	if result.Captured {
		// Re-derive and persist so the stored status reflects the capture.
		if _, err := onboarding.Sync(p.db, projectID); err != nil {
			log.Warn().Err(err).Uint("project", projectID).Msg("chat: sync after capture")
		}
		return captureAck(result), nil
	}

	// Extraction failure is silent: echo the message with the step prompt
	// appended and keep waiting for this step's data.
	return fmt.Sprintf("%s\n\n%s", message, onboarding.StepPrompt(step)), nil
}

// captureAck formats the confirmation for a successful capture.
func captureAck(result onboarding.CaptureResult) string {
	var ack string
	switch result.Step {
	case onboarding.StepVision:
		ack = fmt.Sprintf("Got it — your vision is captured: %s", result.Vision)
	case onboarding.StepLongTermGoals:
		ack = fmt.Sprintf("Captured %d long-term goal(s).", len(result.Goals))
	case onboarding.StepShortTermGoals:
		ack = fmt.Sprintf("Captured %d short-term goal(s).", len(result.Goals))
	}
	if result.Next != "" {
		return fmt.Sprintf("%s %s", ack, onboarding.StepPrompt(result.Next))
	}
	return fmt.Sprintf("%s That completes setup — you're fully onboarded.", ack)
}

// assistantReply produces a plain conversational completion for onboarded
// projects. Provider failure degrades to a canned acknowledgement.
func (p *Pipeline) assistantReply(ctx context.Context, projectID uint, message string) string {
	var project models.Project
	system := "You are Zeta, a concise project assistant."
	if err := p.db.First(&project, projectID).Error; err == nil && project.Vision != "" {
		system += " The project's vision: " + project.Vision
	}

	out, err := p.completer.Complete(ctx, llm.Request{
		Model: p.model,
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: message},
		},
		Temperature: 0.7,
	})
	if err != nil || out == "" {
		log.Warn().Err(err).Uint("project", projectID).Msg("chat: assistant reply")
		return "Noted. I couldn't reach the assistant just now — try again in a moment."
	}
	return out
}
