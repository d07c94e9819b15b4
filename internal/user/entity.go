// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	IsVerified   bool      `db:"is_verified"`
	Role         *string   `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role != nil && *u.Role == RoleAdmin
}

func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return *u.Role
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
