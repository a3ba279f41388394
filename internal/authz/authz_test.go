package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/timewise-api/internal/models"
)

func TestCanAccess(t *testing.T) {
	owner := &models.User{Base: models.Base{ID: "owner"}, Role: models.RoleUser}
	stranger := &models.User{Base: models.Base{ID: "stranger"}, Role: models.RoleUser}
	admin := &models.User{Base: models.Base{ID: "admin"}, Role: models.RoleAdmin}

	tests := []struct {
		name  string
		actor *models.User
		want  bool
	}{
		{"owner", owner, true},
		{"other user", stranger, false},
		{"admin", admin, true},
		{"no actor", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.actor, "owner"))
		})
	}
}
