package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/maysotoledo/agenda-epc/internal/domain"
	"github.com/maysotoledo/agenda-epc/internal/models"
)

// EventRepository handles event-related database operations.
type EventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db.DB}
}

// WithTx returns a repository bound to the given transaction.
func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

// translateSlotConflict converts a storage-level unique violation on the
// active-slot index into the domain error the caller must surface. A race
// that slips past the availability pre-check ends here.
func translateSlotConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.New(domain.KindSlotTaken, "this slot has already been booked; refresh the calendar and pick another")
	}
	return err
}

// Create inserts a new event.
func (r *EventRepository) Create(event *models.Event) error {
	if err := r.db.Create(event).Error; err != nil {
		if translated := translateSlotConflict(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// Save persists changes to an existing event.
func (r *EventRepository) Save(event *models.Event) error {
	if err := r.db.Save(event).Error; err != nil {
		if translated := translateSlotConflict(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to update event %d: %w", event.ID, err)
	}
	return nil
}

// GetByID retrieves an active event by ID. Returns KindNotFound when the
// event does not exist or is cancelled.
func (r *EventRepository) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.New(domain.KindNotFound, "event %d not found", id)
		}
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return &event, nil
}

// GetByIDAny retrieves an event by ID including cancelled ones.
func (r *EventRepository) GetByIDAny(id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.Unscoped().First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.New(domain.KindNotFound, "event %d not found", id)
		}
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return &event, nil
}

// BookedHours returns the starting hours of the user's active events on the
// given day, excluding excludeID when non-zero (the event being edited).
func (r *EventRepository) BookedHours(userID uint, day time.Time, excludeID uint) ([]int, error) {
	var starts []time.Time
	query := r.db.Model(&models.Event{}).
		Where("user_id = ?", userID).
		Where("starts_at >= ? AND starts_at < ?", day, day.AddDate(0, 0, 1))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Pluck("starts_at", &starts).Error; err != nil {
		return nil, fmt.Errorf("failed to get booked hours for user %d: %w", userID, err)
	}

	hours := make([]int, 0, len(starts))
	for _, s := range starts {
		hours = append(hours, s.Hour())
	}
	return hours, nil
}

// Cancel soft-deletes the event, recording who cancelled it.
func (r *EventRepository) Cancel(event *models.Event, actorID uint) error {
	now := time.Now()
	err := r.db.Model(event).
		Where("deleted_at IS NULL").
		Updates(map[string]any{
			"deleted_at": now,
			"deleted_by": actorID,
			"updated_by": actorID,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to cancel event %d: %w", event.ID, err)
	}
	return nil
}

// Restore clears the soft delete. The active-slot index rejects the restore
// when another active event meanwhile took the same slot.
func (r *EventRepository) Restore(event *models.Event, actorID uint) error {
	err := r.db.Unscoped().Model(event).
		Updates(map[string]any{
			"deleted_at": nil,
			"deleted_by": nil,
			"updated_by": actorID,
		}).Error
	if err != nil {
		if translated := translateSlotConflict(err); translated != err {
			return translated
		}
		return fmt.Errorf("failed to restore event %d: %w", event.ID, err)
	}
	return nil
}

// ListByUserBetween retrieves the user's active events with starts_at in
// [from, to), ordered by start time.
func (r *EventRepository) ListByUserBetween(userID uint, from, to time.Time) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("user_id = ?", userID).
		Where("starts_at >= ? AND starts_at < ?", from, to).
		Order("starts_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events for user %d: %w", userID, err)
	}
	return events, nil
}

// CountActive counts the user's active events.
func (r *EventRepository) CountActive(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active events for user %d: %w", userID, err)
	}
	return count, nil
}
