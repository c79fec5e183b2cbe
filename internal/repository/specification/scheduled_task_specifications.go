package specification

import (
	"time"

	"gorm.io/gorm"
)

// ActiveOnly keeps enabled tasks.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

// DueBefore keeps tasks whose next run is at or before the given instant.
type DueBefore struct {
	Time time.Time
}

func (s DueBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("next_run_at <= ?", s.Time)
}
