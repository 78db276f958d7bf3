package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role (i.e. read protected resources)
	RoleUser UserRole = "user"
	// RoleAdmin is an admin role (i.e. manage protected resources)
	RoleAdmin UserRole = "admin"
)

// User is the user model
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username          string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Role              UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	PasswordHash      string     `bun:"password_hash" json:"-"`
	PasswordChangedAt *time.Time `bun:"password_changed_at,nullzero" json:"-"`
	LastSignOutAt     *time.Time `bun:"last_sign_out_at,nullzero" json:"-"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt         *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PublicUser is the outward projection of a user record. The password
// hash and the invalidation stamps never leave the process.
type PublicUser struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Role      UserRole   `json:"user_role"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Public returns the outward projection of the user
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// InvalidationBoundary returns the later of the user's last password
// change and last sign out. Tokens issued before it must be rejected.
func (u *User) InvalidationBoundary() *time.Time {
	boundary := u.PasswordChangedAt
	if u.LastSignOutAt != nil {
		if boundary == nil || u.LastSignOutAt.After(*boundary) {
			boundary = u.LastSignOutAt
		}
	}
	return boundary
}
