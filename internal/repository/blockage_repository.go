package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/maysotoledo/agenda-epc/internal/models"
)

// BlockageRepository handles blockage-related database operations.
type BlockageRepository struct {
	db *gorm.DB
}

// NewBlockageRepository creates a new blockage repository.
func NewBlockageRepository(db *DB) *BlockageRepository {
	return &BlockageRepository{db: db.DB}
}

// WithTx returns a repository bound to the given transaction.
func (r *BlockageRepository) WithTx(tx *gorm.DB) *BlockageRepository {
	return &BlockageRepository{db: tx}
}

// Upsert creates the blockage for (userID, day) or refreshes its reason when
// the day is already blocked. Returns the stored row.
func (r *BlockageRepository) Upsert(userID uint, day time.Time, reason string, actorID uint) (*models.Blockage, error) {
	blockage := &models.Blockage{
		UserID:    userID,
		Day:       day,
		Reason:    reason,
		CreatedBy: actorID,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]any{"reason": reason, "updated_at": time.Now()}),
	}).Create(blockage).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert blockage for user %d on %s: %w", userID, day.Format("2006-01-02"), err)
	}

	// The conflict path does not refresh the struct; read the stored row back.
	var stored models.Blockage
	if err := r.db.Where("user_id = ? AND day = ?", userID, day).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to reload blockage for user %d on %s: %w", userID, day.Format("2006-01-02"), err)
	}
	return &stored, nil
}

// Get retrieves the blockage for (userID, day), or nil when the day is open.
func (r *BlockageRepository) Get(userID uint, day time.Time) (*models.Blockage, error) {
	var blockage models.Blockage
	err := r.db.Where("user_id = ? AND day = ?", userID, day).First(&blockage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get blockage for user %d on %s: %w", userID, day.Format("2006-01-02"), err)
	}
	return &blockage, nil
}

// Delete removes the blockage for (userID, day). When reasonFilter is
// non-empty only a blockage with that exact reason is removed. Reports
// whether a row was deleted.
func (r *BlockageRepository) Delete(userID uint, day time.Time, reasonFilter string) (bool, error) {
	query := r.db.Where("user_id = ? AND day = ?", userID, day)
	if reasonFilter != "" {
		query = query.Where("reason = ?", reasonFilter)
	}

	result := query.Delete(&models.Blockage{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete blockage for user %d on %s: %w", userID, day.Format("2006-01-02"), result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DaysInRange returns the blocked days for the user in [start, end] inclusive.
func (r *BlockageRepository) DaysInRange(userID uint, start, end time.Time) ([]time.Time, error) {
	var days []time.Time
	err := r.db.Model(&models.Blockage{}).
		Where("user_id = ?", userID).
		Where("day >= ? AND day <= ?", start, end).
		Order("day ASC").
		Pluck("day", &days).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list blocked days for user %d: %w", userID, err)
	}
	return days, nil
}

// ListInRange returns the blockage rows for the user in [start, end] inclusive.
func (r *BlockageRepository) ListInRange(userID uint, start, end time.Time) ([]models.Blockage, error) {
	var blockages []models.Blockage
	err := r.db.Where("user_id = ?", userID).
		Where("day >= ? AND day <= ?", start, end).
		Order("day ASC").
		Find(&blockages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list blockages for user %d: %w", userID, err)
	}
	return blockages, nil
}
