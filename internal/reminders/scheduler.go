// Package reminders scans the calendar for due reminder items and fans
// them out to the configured notifiers on a cron schedule.
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/pantheonlabs/zeta/internal/eventlog"
	"github.com/pantheonlabs/zeta/internal/models"
	"github.com/pantheonlabs/zeta/internal/notify"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler periodically dispatches due calendar reminders.
type Scheduler struct {
	db        *gorm.DB
	notifiers []notify.Notifier
	schedule  string
	cron      *cron.Cron
	now       func() time.Time
}

// SchedulerOpts holds parameters for creating a Scheduler.
type SchedulerOpts struct {
	DB        *gorm.DB
	Notifiers []notify.Notifier
	Schedule  string           // 5-field cron expression, e.g. "* * * * *"
	Now       func() time.Time // defaults to time.Now
}

// NewScheduler creates a Scheduler.
func NewScheduler(opts SchedulerOpts) (*Scheduler, error) {
	if opts.DB == nil {
		return nil, fmt.Errorf("reminders: db is required")
	}
	if opts.Schedule == "" {
		opts.Schedule = "* * * * *"
	}
	if _, err := cronParser.Parse(opts.Schedule); err != nil {
		return nil, fmt.Errorf("reminders: parse schedule %q: %w", opts.Schedule, err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		db:        opts.DB,
		notifiers: opts.Notifiers,
		schedule:  opts.Schedule,
		cron:      cron.New(cron.WithParser(cronParser)),
		now:       now,
	}, nil
}

// Start begins the cron loop. It returns immediately; dispatch runs on the
// cron goroutine until Stop is called.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			log.Warn().Err(err).Msg("reminders: dispatch cycle")
		}
	})
	if err != nil {
		return fmt.Errorf("reminders: schedule dispatch: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop, waiting for a running dispatch to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce dispatches every due, unsent reminder and returns how many items
// were dispatched. Each item is independent: notifier and store failures
// are warned and the scan continues.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	now := s.now()
	today := now.Format("2006-01-02")

	var items []models.CalendarItem
	err := s.db.Where("reminder_sent_at IS NULL AND date <= ? AND (reminder_telegram = ? OR reminder_in_app = ? OR reminder_email = ?)",
		today, true, true, true).
		Order("date, id").Find(&items).Error
	if err != nil {
		return 0, fmt.Errorf("reminders: scan: %w", err)
	}

	sent := 0
	for i := range items {
		item := &items[i]
		due, ok := dueTime(item, now.Location())
		if !ok {
			// Unparseable date (the resolver's ISO passthrough allows
			// these); leave the row alone.
			continue
		}
		if now.Before(due.Add(-time.Duration(item.ReminderOffsetMin) * time.Minute)) {
			continue
		}

		s.dispatch(ctx, item)

		stamp := now
		if err := s.db.Model(item).Update("reminder_sent_at", &stamp).Error; err != nil {
			log.Warn().Err(err).Uint("item", item.ID).Msg("reminders: stamp sent")
			continue
		}
		sent++
	}
	return sent, nil
}

// dispatch fans one reminder out to the notifiers its flags enable and
// appends the reminder.sent event. In-app delivery is the event row itself.
func (s *Scheduler) dispatch(ctx context.Context, item *models.CalendarItem) {
	text := fmt.Sprintf("Reminder: %s (%s)", item.Title, item.Date)

	var delivered []string
	for _, n := range s.notifiers {
		if !wantsPlatform(item, n.Name()) {
			continue
		}
		if err := n.Send(ctx, text); err != nil {
			log.Warn().Err(err).Uint("item", item.ID).Str("notifier", n.Name()).Msg("reminders: send")
			continue
		}
		delivered = append(delivered, n.Name())
	}
	if item.ReminderInApp {
		delivered = append(delivered, "inapp")
	}

	err := eventlog.Append(s.db, item.ProjectID, eventlog.ActorZeta, eventlog.KindReminderSent, map[string]interface{}{
		"item_id":   item.ID,
		"title":     item.Title,
		"date":      item.Date,
		"delivered": delivered,
	})
	if err != nil {
		log.Warn().Err(err).Uint("item", item.ID).Msg("reminders: log event")
	}
}

// wantsPlatform maps an item's reminder flags to notifier names. Email has
// no notifier here; the flag is carried for the out-of-scope mailer.
func wantsPlatform(item *models.CalendarItem, name string) bool {
	switch name {
	case "telegram":
		return item.ReminderTelegram
	case "slack", "discord":
		return item.ReminderInApp
	}
	return false
}

// dueTime computes the instant an item becomes due: its date at the item's
// time-of-day, or start of day when all-day.
func dueTime(item *models.CalendarItem, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02", item.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	if item.TimeOfDay == nil {
		return t, true
	}
	tod, err := time.Parse("15:04:05", *item.TimeOfDay)
	if err != nil {
		if tod, err = time.Parse("15:04", *item.TimeOfDay); err != nil {
			return t, true
		}
	}
	return t.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute), true
}
