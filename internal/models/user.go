package models

import (
	"time"
)

// Role tag constants. EPC/IPC caseworkers hold the base tags; the plantao
// variants mark on-call duty rosters.
const (
	RoleTagEPC        = "epc"
	RoleTagIPC        = "ipc"
	RoleTagEPCPlantao = "epc_plantao"
	RoleTagIPCPlantao = "ipc_plantao"
)

// User represents a system user. Caseworkers own a personal agenda;
// admins manage everyone's.
type User struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"not null;size:255" json:"name"`
	Email     string        `gorm:"uniqueIndex;size:255" json:"email"`
	IsAdmin   bool          `gorm:"not null;default:false" json:"is_admin"`
	Tags      []UserRoleTag `gorm:"foreignKey:UserID" json:"tags,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// HasTag reports whether the user holds the given role tag.
// Tags must be preloaded.
func (u *User) HasTag(tag string) bool {
	for _, t := range u.Tags {
		if t.Tag == tag {
			return true
		}
	}
	return false
}

// TagNames returns the user's role tags as plain strings.
func (u *User) TagNames() []string {
	names := make([]string, 0, len(u.Tags))
	for _, t := range u.Tags {
		names = append(names, t.Tag)
	}
	return names
}

// UserRoleTag attaches a role tag to a user. A user holds each tag at most once.
type UserRoleTag struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_user_role_tag" json:"user_id"`
	Tag    string `gorm:"size:50;not null;uniqueIndex:idx_user_role_tag" json:"tag"`
}

// TableName specifies the table name for UserRoleTag model.
func (UserRoleTag) TableName() string {
	return "user_role_tags"
}
