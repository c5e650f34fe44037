package users

import (
	"time"

	"github.com/promoflow/promoflow/internal/rbac"
)

// User represents a workflow participant. ManagerID is a back-reference
// used to scope a manager's view to their direct reports. Permissions
// are additive individual grants on top of the role set.
type User struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Role        rbac.Role         `json:"role"`
	ManagerID   *int64            `json:"managerId,omitempty"`
	Permissions []rbac.Permission `json:"permissions,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Actor converts the user into its authorization view.
func (u User) Actor() rbac.Actor {
	return rbac.Actor{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		Overrides: append([]rbac.Permission(nil), u.Permissions...),
	}
}
