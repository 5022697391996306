package models

import (
	"time"

	"gorm.io/gorm"
)

// HistorySnapshot is a persisted daily series for one ticker. Re-capturing a
// ticker overwrites its row.
type HistorySnapshot struct {
	gorm.Model
	Ticker     string            `gorm:"uniqueIndex" json:"ticker"`
	Period     string            `json:"period"`
	Interval   string            `json:"interval"`
	Points     []HistoricalPoint `gorm:"serializer:json" json:"-"`
	PointCount int               `json:"point_count"`
	CapturedAt time.Time         `json:"captured_at"`
}

// BeforeSave keeps PointCount in step with Points.
func (s *HistorySnapshot) BeforeSave(_ *gorm.DB) error {
	s.PointCount = len(s.Points)
	return nil
}
