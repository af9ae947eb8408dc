// Package calendar auto-captures lightweight calendar mutations implied by
// raw chat text. It is a best-effort heuristic: any ambiguity or store
// failure declines silently rather than surfacing an error into the chat.
package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pantheonlabs/zeta/internal/dateparse"
	"github.com/pantheonlabs/zeta/internal/eventlog"
	"github.com/pantheonlabs/zeta/internal/intent"
	"github.com/pantheonlabs/zeta/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Result reports whether a message was handled and the confirmation to
// send when it was.
type Result struct {
	Handled bool
	Reply   string
}

var (
	titleRe      = regexp.MustCompile(`(?:add|put|schedule|remind(?: me)? to|learn|study)\s+(.+)$`)
	boundaryRe   = regexp.MustCompile(`\s+(?:on|for|at)\s+`)
	tomorrowCut  = regexp.MustCompile(`\s+tomm?orr?ow\b`)
	dateishStart = regexp.MustCompile(`^(?:the\s+\d|\d{1,2}\b|\d{4}-\d{2}-\d{2}|(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b|tomm?orr?ow\b)`)
	onTheDayRe   = regexp.MustCompile(`\bon the (\d{1,2})(?:st|nd|rd|th)?\b`)
	bareNumberRe = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\b`)
	inCalendarRe = regexp.MustCompile(`\s+(?:in|to)(?: my| the)? calendar\.?$`)
)

// AutoCapture decides whether the message implicitly requests a calendar
// mutation and performs it directly. Modify intent takes priority over add.
// An add without any resolvable date, or a modify without an existing item
// or a plausible day number, declines.
func AutoCapture(db *gorm.DB, projectID uint, message string, now time.Time) Result {
	intents := intent.Classify(message)
	if !intents.WantsCalendarAction {
		return Result{}
	}

	date, hasDate := dateparse.Resolve(message, now)

	if intents.WantsModify {
		return modifyLatest(db, projectID, message, date, hasDate)
	}

	if !hasDate {
		return Result{}
	}
	return addItem(db, projectID, message, date)
}

// modifyLatest re-dates the most recently created calendar item. Without a
// fully resolved date it infers just a day-of-month from the message,
// keeping the item's month and year.
func modifyLatest(db *gorm.DB, projectID uint, message string, date dateparse.Date, hasDate bool) Result {
	var item models.CalendarItem
	err := db.Where("project_id = ?", projectID).
		Order("created_at DESC, id DESC").First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}
	}
	if err != nil {
		log.Warn().Err(err).Uint("project", projectID).Msg("calendar: modify: load latest")
		return Result{}
	}

	var newDate string
	if hasDate {
		newDate = date.String()
	} else {
		day, ok := inferDay(message)
		if !ok {
			return Result{}
		}
		prefix := monthPrefix(item.Date)
		if prefix == "" {
			return Result{}
		}
		newDate = fmt.Sprintf("%s%02d", prefix, day)
	}

	if err := db.Model(&item).Update("date", newDate).Error; err != nil {
		log.Warn().Err(err).Uint("project", projectID).Msg("calendar: modify: update date")
		return Result{}
	}
	logMutation(db, projectID, "update", item.Title, newDate)

	return Result{
		Handled: true,
		Reply:   fmt.Sprintf("Moved %q to %s.", item.Title, newDate),
	}
}

// addItem inserts a new task-type calendar item for the resolved date.
func addItem(db *gorm.DB, projectID uint, message string, date dateparse.Date) Result {
	title := ExtractTitle(message)
	item := models.CalendarItem{
		ProjectID:         projectID,
		Type:              "task",
		Title:             title,
		Date:              date.String(),
		Details:           message,
		ReminderTelegram:  true,
		ReminderInApp:     true,
		ReminderEmail:     false,
		ReminderOffsetMin: 0,
	}
	if err := db.Create(&item).Error; err != nil {
		log.Warn().Err(err).Uint("project", projectID).Msg("calendar: add: insert")
		return Result{}
	}
	logMutation(db, projectID, "create", title, item.Date)

	return Result{
		Handled: true,
		Reply:   fmt.Sprintf("Added %q to your calendar for %s.", title, item.Date),
	}
}

// ExtractTitle pulls a calendar title out of the message: the text after an
// add/schedule/remind verb, cut at the boundary word that introduces the
// date clause, falling back to the first 80 characters.
func ExtractTitle(message string) string {
	title := ""
	if m := titleRe.FindStringSubmatch(strings.ToLower(message)); m != nil {
		title = m[1]
	}
	if title == "" {
		// Truncate on runes so a multibyte character at the boundary is
		// dropped whole rather than split into invalid UTF-8.
		runes := []rune(message)
		if len(runes) > 80 {
			runes = runes[:80]
		}
		return strings.TrimSpace(string(runes))
	}

	title = cutDateClause(title)

	// Trailing "move it to dec 5"-style clause.
	if i := strings.LastIndex(title, " to "); i >= 0 && dateishStart.MatchString(title[i+4:]) {
		title = title[:i]
	}
	title = inCalendarRe.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// cutDateClause cuts the title at a "tomorrow" token or at the first
// on/for/at boundary whose following text starts a date phrase. Boundaries
// followed by ordinary words ("study for exam") are kept.
func cutDateClause(title string) string {
	if loc := tomorrowCut.FindStringIndex(title); loc != nil {
		return title[:loc[0]]
	}
	for _, loc := range boundaryRe.FindAllStringIndex(title, -1) {
		if dateishStart.MatchString(title[loc[1]:]) {
			return title[:loc[0]]
		}
	}
	return title
}

// inferDay extracts a plausible day-of-month (1-31) from the message,
// preferring an explicit "on the Nth" phrase over the first bare number.
func inferDay(message string) (int, bool) {
	text := strings.ToLower(message)
	m := onTheDayRe.FindStringSubmatch(text)
	if m == nil {
		m = bareNumberRe.FindStringSubmatch(text)
	}
	if m == nil {
		return 0, false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}
	return day, true
}

// monthPrefix returns the "YYYY-MM-" prefix of a stored date, or "" when
// the date is not in canonical form.
func monthPrefix(date string) string {
	if len(date) != 10 || date[4] != '-' || date[7] != '-' {
		return ""
	}
	return date[:8]
}

// logMutation appends the calendar event row. The write already happened;
// a logging failure is warned, not surfaced.
func logMutation(db *gorm.DB, projectID uint, op, title, date string) {
	err := eventlog.Append(db, projectID, eventlog.ActorZeta, eventlog.KindCalendarUpdate, map[string]interface{}{
		"op":     op,
		"title":  title,
		"date":   date,
		"source": "chat_heuristic",
	})
	if err != nil {
		log.Warn().Err(err).Uint("project", projectID).Msg("calendar: log mutation")
	}
}
