package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User representa un usuario del sistema.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt hash
	FullName     string
	Role         string // admin, staff
	Active       bool
	CreatedAt    time.Time
}

// Caller identidad autenticada que origina una operación. Se pasa explícitamente
// a los casos de uso en lugar de leerse de un estado global de sesión.
type Caller struct {
	UserID   int64
	Username string
	Role     string
}

// Authenticated indica si el caller proviene de un token válido.
func (c Caller) Authenticated() bool { return c.UserID > 0 }

// IsAdmin indica si el caller tiene rol admin.
func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }
