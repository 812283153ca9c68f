// Package access holds the ownership predicate every resource service uses.
package access

import "github.com/mamacare/mamacare-api/internal/models"

// Owned is implemented by records that belong to a single user.
type Owned interface {
	OwnerID() string
}

// CanAccess reports whether identity may read or modify record.
// Owner-scoped records carry no admin override.
func CanAccess(identity *models.Identity, record Owned) bool {
	if identity == nil || record == nil || identity.ID == "" {
		return false
	}
	return record.OwnerID() == identity.ID
}
