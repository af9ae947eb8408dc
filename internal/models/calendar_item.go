package models

import "time"

// CalendarItem is a dated entry on a project's calendar. Date is stored as a
// YYYY-MM-DD string rather than a time.Time: the date resolver deliberately
// passes unvalidated ISO components through, and those must survive storage
// unchanged. TimeOfDay is nil for all-day items.
type CalendarItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	ProjectID uint    `gorm:"not null;index"`
	Type      string  `gorm:"size:32;default:task"` // task, event
	Title     string  `gorm:"size:256;not null"`
	Date      string  `gorm:"size:10;index"` // YYYY-MM-DD
	TimeOfDay *string `gorm:"size:8"`        // HH:MM[:SS], nil when all-day
	Details   string  `gorm:"type:text"`

	ReminderTelegram  bool `gorm:"default:false"`
	ReminderInApp     bool `gorm:"default:false"`
	ReminderEmail     bool `gorm:"default:false"`
	ReminderOffsetMin int  `gorm:"default:0"`
	ReminderSentAt    *time.Time

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}
