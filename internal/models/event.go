package models

import (
	"time"

	"gorm.io/gorm"
)

// Event status constants.
const (
	EventStatusPending     = "pending"
	EventStatusFulfilled   = "fulfilled"
	EventStatusUnfulfilled = "unfulfilled"
)

// Event is a one-hour appointment on a caseworker's agenda.
//
// Cancellation is a soft delete: the row keeps its slot history but frees the
// (user_id, starts_at) pair for rebooking. The partial unique index
// uq_events_active_slot (created alongside AutoMigrate) enforces at most one
// active event per user and starting time at the storage level.
type Event struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	StartsAt time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt   time.Time `gorm:"not null" json:"ends_at"`

	SubjectName string `gorm:"size:255;not null" json:"subject_name"`
	CaseNumber  string `gorm:"size:80;not null" json:"case_number"`

	Status          string     `gorm:"size:20;not null;default:pending" json:"status"`
	StatusReason    string     `gorm:"type:text" json:"status_reason,omitempty"`
	StatusAt        *time.Time `json:"status_at,omitempty"`
	StatusUpdatedBy *uint      `json:"status_updated_by,omitempty"`

	CreatedBy uint  `gorm:"not null" json:"created_by"`
	UpdatedBy uint  `gorm:"not null" json:"updated_by"`
	DeletedBy *uint `json:"deleted_by,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName specifies the table name for Event model.
func (Event) TableName() string {
	return "events"
}

// IsCancelled reports whether the event is soft-deleted.
func (e *Event) IsCancelled() bool {
	return e.DeletedAt.Valid
}

// Hour returns the starting hour of the event's slot.
func (e *Event) Hour() int {
	return e.StartsAt.Hour()
}

// ValidEventStatus reports whether s is one of the known event statuses.
func ValidEventStatus(s string) bool {
	switch s {
	case EventStatusPending, EventStatusFulfilled, EventStatusUnfulfilled:
		return true
	}
	return false
}
