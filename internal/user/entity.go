// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/science-ai/backend/internal/usage"
)

// User is an account row. Usage counters live on the same row but are owned
// by the usage package and never loaded here.
type User struct {
	ID        string     `db:"id"`
	Email     string     `db:"email"`
	Name      string     `db:"name"`
	Role      string     `db:"role"`
	Plan      usage.Plan `db:"plan"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// PlanCount is one row of the users-per-plan breakdown.
type PlanCount struct {
	Plan  usage.Plan `db:"plan"  json:"plan"`
	Users int        `db:"users" json:"users"`
}
