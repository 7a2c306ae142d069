package user

import "time"

// User roles.
const (
	RoleResident  = "resident"
	RolePreceptor = "preceptor"
	RoleAdmin     = "admin"
)

var validRoles = map[string]bool{
	RoleResident:  true,
	RolePreceptor: true,
	RoleAdmin:     true,
}

// User maps to the users table. PasswordHash never leaves the server.
type User struct {
	ID           int    `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	Name         string `db:"name" json:"name"`
	CRM          string `db:"crm" json:"crm,omitempty"`
	Role         string `db:"role" json:"role"`
	PasswordHash string `db:"password_hash" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// RegisterRequest creates a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	CRM      string `json:"crm"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// LoginRequest authenticates by username and password.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token and the account it belongs to.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
