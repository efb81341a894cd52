package model

import "time"

// ClassSlot is a persisted lesson occurrence. Times are stored as "HH:MM".
type ClassSlot struct {
	ID        int64  `gorm:"primaryKey"`
	Day       int    `gorm:"type:smallint;index;not null"` // 1 = Monday .. 5 = Friday
	StartTime string `gorm:"size:8;not null"`
	EndTime   string `gorm:"size:8;not null"`
	Subject   string `gorm:"size:128;not null"`
	Teacher   string `gorm:"size:128"`
	Room      string `gorm:"size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
