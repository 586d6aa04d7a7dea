package entity

import "time"

// Roles disponibles para usuarios de una empresa.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// User representa un usuario autenticable, siempre asociado a una empresa.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string
	Name         string
	Role         string // ver constantes Role*
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
