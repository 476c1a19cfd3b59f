package models

// Roles recognized by the authorization guard.
const (
	RoleAdmin    = "Admin"
	RoleVendedor = "Vendedor"
)

// User represents an account that can log in and record sales.
type User struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Email string `json:"email" gorm:"uniqueIndex;type:varchar(100)" validate:"required,email,max=100"`
	// Stored and compared as received, matching the system this replaces.
	// Known weakness: no hashing.
	Password string `json:"-" gorm:"type:varchar(100)" validate:"required,min=4,max=100"`
	Role     string `json:"role" gorm:"type:varchar(20);default:Vendedor" validate:"omitempty,oneof=Admin Vendedor"`
	Sales    []Sale `json:"-"`
}
