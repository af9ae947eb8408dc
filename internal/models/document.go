package models

import "time"

// Document records a file generated by the autonomy applier: the blob path
// it was uploaded under and the durable URL it is served from.
type Document struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	ProjectID   uint   `gorm:"not null;index"`
	Filename    string `gorm:"size:256;not null"`
	MimeType    string `gorm:"size:64"`
	Description string `gorm:"type:text"`
	Path        string `gorm:"size:512"`
	URL         string `gorm:"size:512"`
	CreatedAt   time.Time
}
