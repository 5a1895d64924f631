package models

import (
	"time"
)

// VacationPeriod is a contiguous inclusive range of vacation days for one user.
// Start and end always fall in Year; periods never cross a year boundary.
type VacationPeriod struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index:idx_vacation_user_year" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	StartDate time.Time `gorm:"type:date;not null;index:idx_vacation_range" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_vacation_range" json:"end_date"`
	Year      int       `gorm:"not null;index:idx_vacation_user_year" json:"year"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for VacationPeriod model.
func (VacationPeriod) TableName() string {
	return "vacation_periods"
}

// Days returns the inclusive day count of the period (10th to 10th = 1).
func (v *VacationPeriod) Days() int {
	if v.EndDate.Before(v.StartDate) {
		return 0
	}
	s := time.Date(v.StartDate.Year(), v.StartDate.Month(), v.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(v.EndDate.Year(), v.EndDate.Month(), v.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

// Overlaps reports whether the period intersects [start, end], closed on
// both ends.
func (v *VacationPeriod) Overlaps(start, end time.Time) bool {
	return !v.StartDate.After(end) && !v.EndDate.Before(start)
}
