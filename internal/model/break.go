package model

import "time"

// Break is a named non-lesson interval shared by every school day.
type Break struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:64;not null"`
	StartTime string `gorm:"size:8;not null"`
	EndTime   string `gorm:"size:8;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
