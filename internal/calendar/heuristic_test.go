package calendar

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pantheonlabs/zeta/internal/eventlog"
	"github.com/pantheonlabs/zeta/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Reference clock: Monday 2025-12-15 10:00 UTC.
var heuristicNow = time.Date(2025, 12, 15, 10, 0, 0, 0, time.UTC)

func openCalendarTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.CalendarItem{}, &models.EventLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// --- add tests ---

func TestAutoCapture_AddWithExplicitDate(t *testing.T) {
	db := openCalendarTestDB(t)

	msg := "Add study for exam on dec 20 2025"
	res := AutoCapture(db, 1, msg, heuristicNow)
	if !res.Handled {
		t.Fatal("not handled")
	}
	if res.Reply != `Added "study for exam" to your calendar for 2025-12-20.` {
		t.Fatalf("reply = %q", res.Reply)
	}

	var item models.CalendarItem
	if err := db.Where("project_id = ?", 1).First(&item).Error; err != nil {
		t.Fatalf("item: %v", err)
	}
	if item.Title != "study for exam" {
		t.Errorf("title = %q", item.Title)
	}
	if item.Date != "2025-12-20" {
		t.Errorf("date = %q", item.Date)
	}
	if item.Type != "task" {
		t.Errorf("type = %q", item.Type)
	}
	if !item.ReminderTelegram || !item.ReminderInApp || item.ReminderEmail {
		t.Errorf("reminder flags = tg=%v inapp=%v email=%v", item.ReminderTelegram, item.ReminderInApp, item.ReminderEmail)
	}
	if item.Details != msg {
		t.Errorf("details = %q, want the raw message", item.Details)
	}

	row, err := eventlog.LatestByKind(db, 1, eventlog.KindCalendarUpdate)
	if err != nil || row == nil {
		t.Fatalf("calendar event missing: %v", err)
	}
	details := eventlog.Details(row)
	if details["source"] != "chat_heuristic" || details["op"] != "create" {
		t.Errorf("details = %v", details)
	}
}

func TestAutoCapture_AddTomorrow(t *testing.T) {
	db := openCalendarTestDB(t)

	res := AutoCapture(db, 1, "remind me to call mom tomorrow", heuristicNow)
	if !res.Handled {
		t.Fatal("not handled")
	}

	var item models.CalendarItem
	if err := db.First(&item).Error; err != nil {
		t.Fatalf("item: %v", err)
	}
	if item.Title != "call mom" {
		t.Errorf("title = %q", item.Title)
	}
	if item.Date != "2025-12-16" {
		t.Errorf("date = %q", item.Date)
	}
}

func TestAutoCapture_AddWithoutDateDeclines(t *testing.T) {
	db := openCalendarTestDB(t)

	res := AutoCapture(db, 1, "add buy milk", heuristicNow)
	if res.Handled {
		t.Fatal("handled an add without a resolvable date")
	}
	var n int64
	db.Model(&models.CalendarItem{}).Count(&n)
	if n != 0 {
		t.Fatalf("items = %d, want 0", n)
	}
}

func TestAutoCapture_NoIntentDeclines(t *testing.T) {
	db := openCalendarTestDB(t)

	res := AutoCapture(db, 1, "how was your day tomorrow", heuristicNow)
	if res.Handled {
		t.Fatal("handled a message with no calendar intent")
	}
}

// --- modify tests ---

func seedItem(t *testing.T, db *gorm.DB, projectID uint, title, date string) *models.CalendarItem {
	t.Helper()
	item := models.CalendarItem{ProjectID: projectID, Type: "task", Title: title, Date: date}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return &item
}

func TestAutoCapture_ModifyDayOnly(t *testing.T) {
	db := openCalendarTestDB(t)
	seedItem(t, db, 1, "study for exam", "2025-12-20")

	res := AutoCapture(db, 1, "move it to the 25th", heuristicNow)
	if !res.Handled {
		t.Fatal("not handled")
	}
	if res.Reply != `Moved "study for exam" to 2025-12-25.` {
		t.Fatalf("reply = %q", res.Reply)
	}

	var item models.CalendarItem
	if err := db.First(&item).Error; err != nil {
		t.Fatalf("item: %v", err)
	}
	if item.Date != "2025-12-25" {
		t.Errorf("date = %q", item.Date)
	}
}

func TestAutoCapture_ModifyFullDate(t *testing.T) {
	db := openCalendarTestDB(t)
	seedItem(t, db, 1, "standup", "2025-12-20")

	res := AutoCapture(db, 1, "reschedule to jan 5", heuristicNow)
	if !res.Handled {
		t.Fatal("not handled")
	}
	var item models.CalendarItem
	if err := db.First(&item).Error; err != nil {
		t.Fatalf("item: %v", err)
	}
	// jan 5 is in the past relative to mid-December, so it rolls to next year.
	if item.Date != "2026-01-05" {
		t.Errorf("date = %q", item.Date)
	}
}

func TestAutoCapture_ModifyTargetsLatestItem(t *testing.T) {
	db := openCalendarTestDB(t)
	seedItem(t, db, 1, "older", "2025-12-18")
	seedItem(t, db, 1, "newer", "2025-12-20")

	res := AutoCapture(db, 1, "change it to the 22nd", heuristicNow)
	if !res.Handled {
		t.Fatal("not handled")
	}
	if res.Reply != `Moved "newer" to 2025-12-22.` {
		t.Fatalf("reply = %q", res.Reply)
	}

	var older models.CalendarItem
	if err := db.Where("title = ?", "older").First(&older).Error; err != nil {
		t.Fatalf("older: %v", err)
	}
	if older.Date != "2025-12-18" {
		t.Errorf("older item moved: %q", older.Date)
	}
}

func TestAutoCapture_ModifyWinsOverAdd(t *testing.T) {
	db := openCalendarTestDB(t)
	seedItem(t, db, 1, "review", "2025-12-20")

	// "update" and "reminder" signal both intents; modify takes priority.
	res := AutoCapture(db, 1, "update the reminder to jan 5", heuristicNow)
	if !res.Handled {
		t.Fatal("not handled")
	}
	var n int64
	db.Model(&models.CalendarItem{}).Count(&n)
	if n != 1 {
		t.Fatalf("items = %d, want 1 (no new item added)", n)
	}
}

func TestAutoCapture_ModifyWithoutItemDeclines(t *testing.T) {
	db := openCalendarTestDB(t)

	res := AutoCapture(db, 1, "move it to the 25th", heuristicNow)
	if res.Handled {
		t.Fatal("handled a modify with nothing to modify")
	}
}

func TestAutoCapture_ModifyWithoutDayDeclines(t *testing.T) {
	db := openCalendarTestDB(t)
	seedItem(t, db, 1, "standup", "2025-12-20")

	res := AutoCapture(db, 1, "move it somewhere else", heuristicNow)
	if res.Handled {
		t.Fatal("handled a modify with no inferable day")
	}
	var item models.CalendarItem
	if err := db.First(&item).Error; err != nil {
		t.Fatalf("item: %v", err)
	}
	if item.Date != "2025-12-20" {
		t.Errorf("date changed: %q", item.Date)
	}
}

// --- title extraction tests ---

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		// The "for" after study introduces a noun, not a date; only the "on"
		// before the date phrase cuts.
		{"Add study for exam on dec 20 2025", "study for exam"},
		{"remind me to review notes tomorrow", "review notes"},
		{"put groceries in my calendar tomorrow", "groceries"},
		{"schedule dinner at 7", "dinner"},
		{"add team sync on 2025-12-22", "team sync"},
		{"add call with anna for the 3rd", "call with anna"},
		{"remind me to move the boxes to dec 5", "move the boxes"},
	}
	for _, tt := range tests {
		if got := ExtractTitle(tt.in); got != tt.want {
			t.Errorf("ExtractTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractTitle_Fallback(t *testing.T) {
	msg := "calendar entry without a leading verb please"
	if got := ExtractTitle(msg); got != msg {
		t.Errorf("ExtractTitle(%q) = %q, want the message itself", msg, got)
	}
}

func TestExtractTitle_FallbackTruncatesOnRunes(t *testing.T) {
	msg := strings.Repeat("café ", 30) // 150 runes, 180 bytes
	got := ExtractTitle(msg)
	if !utf8.ValidString(got) {
		t.Fatalf("truncated title is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n > 80 {
		t.Errorf("rune count = %d, want at most 80", n)
	}
}
