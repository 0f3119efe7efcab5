package model

import "gorm.io/gorm"

// User is an actor known to the ledger. Credentials live with the upstream identity provider.
type User struct {
	BaseModel
	Email     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName  string         `gorm:"type:varchar(255)" json:"full_name"`
	Role      Role           `gorm:"type:varchar(20);not null;default:'viewer'" json:"role"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Actor returns the identity used when this user performs an operation.
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// CreateUserRequest is the payload for registering a user.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"max=255"`
	Role     Role   `json:"role" validate:"omitempty,oneof=admin manager viewer"`
}

// UpdateRoleRequest changes a user's role.
type UpdateRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=admin manager viewer"`
}
