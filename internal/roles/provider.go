// Package roles resolves user capabilities for the scheduling services.
// Authentication lives outside this system; services only see an actor's
// capability set through the Provider.
package roles

import (
	"github.com/maysotoledo/agenda-epc/internal/repository"
)

// Capabilities is the opaque capability set of a user.
type Capabilities struct {
	IsAdmin bool
	Tags    []string
}

// HasTag reports whether the capability set includes the given role tag.
func (c Capabilities) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Provider resolves capabilities and role-tag membership.
type Provider interface {
	Capabilities(userID uint) (Capabilities, error)
	UserIDsWithTag(tag string) ([]uint, error)
	AdminIDs() ([]uint, error)
}

// DBProvider resolves capabilities from the users table.
type DBProvider struct {
	users *repository.UserRepository
}

// NewDBProvider creates a database-backed role provider.
func NewDBProvider(users *repository.UserRepository) *DBProvider {
	return &DBProvider{users: users}
}

// Capabilities returns the capability set of the given user.
func (p *DBProvider) Capabilities(userID uint) (Capabilities, error) {
	user, err := p.users.GetByID(userID)
	if err != nil {
		return Capabilities{}, err
	}
	return Capabilities{IsAdmin: user.IsAdmin, Tags: user.TagNames()}, nil
}

// UserIDsWithTag returns the IDs of every user holding the given tag.
func (p *DBProvider) UserIDsWithTag(tag string) ([]uint, error) {
	return p.users.UserIDsWithTag(tag)
}

// AdminIDs returns the IDs of all admin users.
func (p *DBProvider) AdminIDs() ([]uint, error) {
	return p.users.AdminIDs()
}
