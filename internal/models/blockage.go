package models

import (
	"time"
)

// Blockage is an admin-imposed unavailability for one caseworker on one day.
//
// Weekends are never stored: they are implicitly blocked by the calendar
// rules, which keeps this table proportional to actual admin actions.
type Blockage struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;uniqueIndex:idx_blockage_user_day" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Day    time.Time `gorm:"type:date;not null;uniqueIndex:idx_blockage_user_day" json:"day"`
	Reason string    `gorm:"size:255" json:"reason,omitempty"`

	CreatedBy uint      `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Blockage model.
func (Blockage) TableName() string {
	return "blockages"
}
