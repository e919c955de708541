package domain

// Role determines what a user is allowed to do.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one we recognize.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an account in the system.
type User struct {
	Record
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Role         Role   `json:"role"`
	Active       bool   `json:"active"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u.Active
}
