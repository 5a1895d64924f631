package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/maysotoledo/agenda-epc/internal/domain"
	"github.com/maysotoledo/agenda-epc/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.DB}
}

// Create creates a new user.
func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user with role tags preloaded.
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Tags").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.New(domain.KindNotFound, "user %d not found", id)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// UserIDsWithTag returns the IDs of every user holding the given role tag.
func (r *UserRepository) UserIDsWithTag(tag string) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.UserRoleTag{}).
		Where("tag = ?", tag).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users with tag %s: %w", tag, err)
	}
	return ids, nil
}

// ListWithTag returns every user holding the given role tag.
func (r *UserRepository) ListWithTag(tag string) ([]models.User, error) {
	var users []models.User
	err := r.db.Preload("Tags").
		Joins("JOIN user_role_tags ON user_role_tags.user_id = users.id").
		Where("user_role_tags.tag = ?", tag).
		Order("users.name ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users with tag %s: %w", tag, err)
	}
	return users, nil
}

// AdminIDs returns the IDs of all admin users.
func (r *UserRepository) AdminIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.User{}).
		Where("is_admin = ?", true).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list admin users: %w", err)
	}
	return ids, nil
}
