package httpkit

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the authenticated operator behind an admin request.
type Identity interface {
	UserID() uuid.UUID
	Roles() []string
	HasRole(role string) bool
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID { return i.userID }
func (i *identity) Roles() []string   { return i.roles }
func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

func (i *identity) HasRole(role string) bool {
	for _, r := range i.roles {
		if r == role {
			return true
		}
	}
	return false
}

// GetIdentity reads the identity set by AuthRequired. Unauthenticated
// requests get an identity whose IsAuthenticated is false.
func GetIdentity(c *gin.Context) Identity {
	id := &identity{}
	if raw, ok := c.Get(ContextUserIDKey); ok {
		if userID, ok := raw.(uuid.UUID); ok {
			id.userID = userID
			id.authenticated = true
		}
	}
	if raw, ok := c.Get(ContextRolesKey); ok {
		if roles, ok := raw.([]string); ok {
			id.roles = roles
		}
	}
	return id
}
