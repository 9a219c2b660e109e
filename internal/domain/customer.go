package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Customer represents a registered shopper. Every customer owns exactly one
// cart, created at registration.
type Customer struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName,omitempty"`
	LastName     string    `json:"lastName,omitempty"`
	Role         string    `json:"role"`
	CartID       string    `json:"cartId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
