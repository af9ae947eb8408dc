package models

import "time"

// Task statuses.
const (
	TaskUnderConstruction = "under_construction"
	TaskInProgress        = "in_progress"
	TaskTodo              = "todo"
	TaskDoing             = "doing"
	TaskDone              = "done"
)

// Task assignees.
const (
	AssigneeZeta = "zeta"
	AssigneeUser = "user"
)

// TaskItem is a unit of work proposed for the assistant or the owner.
// Created and updated only by the autonomy plan applier.
type TaskItem struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID       uint   `gorm:"not null;index:idx_task_project_assignee"`
	Assignee        string `gorm:"size:16;default:zeta;index:idx_task_project_assignee"` // zeta, user
	Title           string `gorm:"size:256;not null"`
	Details         string `gorm:"type:text"`
	Procedure       string `gorm:"type:text"`
	Status          string `gorm:"size:24;default:under_construction"`
	DueAt           *time.Time
	ImprovementNote string `gorm:"type:text"`
	Source          string `gorm:"size:32"` // e.g. "autonomy"
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
