package models

import "time"

// Project is the unit of tenancy. Vision and the two goal columns hold the
// raw text the owner provided (goal columns newline-separated); normalized
// goals live in Goal rows. OnboardingStatus counts completed setup steps
// (0-4) and is only ever raised by the onboarding engine.
type Project struct {
	ID                uint   `gorm:"primaryKey;autoIncrement"`
	Name              string `gorm:"size:128;not null"`
	OwnerID           string `gorm:"size:64;index"`
	Vision            string `gorm:"type:text"`
	LongTermGoals     string `gorm:"type:text"`
	ShortTermGoals    string `gorm:"type:text"`
	TelegramConnected bool   `gorm:"default:false"`
	OnboardingStatus  int    `gorm:"default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Goals         []Goal         `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CalendarItems []CalendarItem `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Tasks         []TaskItem     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// ProjectSummary is the secondary per-project record (mainframe info) that
// fans out derived state, currently the onboarding completion flag.
type ProjectSummary struct {
	ID                 uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID          uint   `gorm:"uniqueIndex;not null"`
	OnboardingComplete bool   `gorm:"default:false"`
	Summary            string `gorm:"type:text"`
	UpdatedAt          time.Time
}
