package domain

import "time"

// User models an account held by the identity service.
type User struct {
	ID           string    `json:"id"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	RoleID       string    `json:"role_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role is one rung of the permission ladder. Levels are unique and
// totally ordered; the lowest level is the default role assigned at
// sign-up.
type Role struct {
	ID             string `json:"id"`
	Level          int    `json:"level"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	MaxContentYear int    `json:"max_content_year"`
}

// DefaultRole is the rung created lazily when the role ladder is empty.
func DefaultRole() *Role {
	return &Role{
		Level:          0,
		Name:           "default_role",
		Description:    "basic role, created automatically",
		MaxContentYear: 1980,
	}
}

// Profile is the user view returned by the account endpoints: the user
// record joined with its role label.
type Profile struct {
	Login     string `json:"login"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	RoleName  string `json:"role_name"`
	RoleLevel int    `json:"role_level"`
}
