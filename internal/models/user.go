// internal/models/user.go
package models

type Address struct {
	ID        string `json:"id"`
	Label     string `json:"label" validate:"required,max=64"`
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	IsDefault bool   `json:"isDefault"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Addresses    []Address `json:"addresses,omitempty"`
}

// Sanitized returns a copy safe to expose outside the auth layer.
func (u User) Sanitized() User {
	out := u
	out.PasswordHash = ""
	return out
}
