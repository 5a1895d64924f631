package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/maysotoledo/agenda-epc/internal/domain"
	"github.com/maysotoledo/agenda-epc/internal/models"
)

// VacationRepository handles vacation-period database operations.
type VacationRepository struct {
	db *gorm.DB
}

// NewVacationRepository creates a new vacation repository.
func NewVacationRepository(db *DB) *VacationRepository {
	return &VacationRepository{db: db.DB}
}

// WithTx returns a repository bound to the given transaction.
func (r *VacationRepository) WithTx(tx *gorm.DB) *VacationRepository {
	return &VacationRepository{db: tx}
}

// Create inserts a new vacation period.
func (r *VacationRepository) Create(period *models.VacationPeriod) error {
	if err := r.db.Create(period).Error; err != nil {
		return fmt.Errorf("failed to create vacation period: %w", err)
	}
	return nil
}

// Save persists changes to an existing vacation period.
func (r *VacationRepository) Save(period *models.VacationPeriod) error {
	if err := r.db.Save(period).Error; err != nil {
		return fmt.Errorf("failed to update vacation period %d: %w", period.ID, err)
	}
	return nil
}

// GetByID retrieves a vacation period by ID.
func (r *VacationRepository) GetByID(id uint) (*models.VacationPeriod, error) {
	var period models.VacationPeriod
	if err := r.db.First(&period, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.New(domain.KindNotFound, "vacation period %d not found", id)
		}
		return nil, fmt.Errorf("failed to get vacation period %d: %w", id, err)
	}
	return &period, nil
}

// Delete removes a vacation period.
func (r *VacationRepository) Delete(id uint) error {
	result := r.db.Delete(&models.VacationPeriod{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete vacation period %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.New(domain.KindNotFound, "vacation period %d not found", id)
	}
	return nil
}

// ListForYear returns the user's periods in the given year, excluding
// excludeID when non-zero (the record being edited).
func (r *VacationRepository) ListForYear(userID uint, year int, excludeID uint) ([]models.VacationPeriod, error) {
	var periods []models.VacationPeriod
	query := r.db.Where("user_id = ? AND year = ?", userID, year)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Order("start_date ASC").Find(&periods).Error; err != nil {
		return nil, fmt.Errorf("failed to list vacation periods for user %d in %d: %w", userID, year, err)
	}
	return periods, nil
}

// ListByUser returns all periods of a user, newest first.
func (r *VacationRepository) ListByUser(userID uint) ([]models.VacationPeriod, error) {
	var periods []models.VacationPeriod
	err := r.db.Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&periods).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vacation periods for user %d: %w", userID, err)
	}
	return periods, nil
}

// HasOverlap reports whether the user has a period intersecting
// [start, end] inclusive, excluding excludeID when non-zero.
func (r *VacationRepository) HasOverlap(userID uint, start, end time.Time, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.VacationPeriod{}).
		Where("user_id = ?", userID).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check vacation overlap for user %d: %w", userID, err)
	}
	return count > 0, nil
}

// HasOverlapAmong reports whether any of the given users has a period
// intersecting [start, end] inclusive, excluding excludeID when non-zero.
func (r *VacationRepository) HasOverlapAmong(userIDs []uint, start, end time.Time, excludeID uint) (bool, error) {
	if len(userIDs) == 0 {
		return false, nil
	}

	var count int64
	query := r.db.Model(&models.VacationPeriod{}).
		Where("user_id IN ?", userIDs).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check vacation collision: %w", err)
	}
	return count > 0, nil
}
