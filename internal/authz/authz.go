// Package authz holds the ownership rule shared by every per-resource
// operation.
package authz

import "github.com/yukikurage/timewise-api/internal/models"

// CanAccess reports whether actor may read or modify a record owned by ownerID.
func CanAccess(actor *models.User, ownerID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID == ownerID || actor.Role == models.RoleAdmin
}
