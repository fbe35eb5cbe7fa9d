// estateadmin | 2026
// entity.go

package user

import (
	"context"
	"time"

	"github.com/mseddi/estateadmin/internal/middleware"
)

type User struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin || role == RoleSuperAdmin
}

func (u *User) IsStaff() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// Actor is the authenticated identity a request acts as. It carries only
// what authorization decisions need.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAuthenticated() bool {
	return a.ID != ""
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}

func ActorFromContext(ctx context.Context) Actor {
	return Actor{
		ID:   middleware.GetUserID(ctx),
		Role: middleware.GetUserRole(ctx),
	}
}
