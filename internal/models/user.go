package models

type UserRole string

const (
	RoleAdmin UserRole = "admin"
)

// AdminUser is the identity attached to a request that passed the admin gate.
// Password-authenticated requests carry the synthetic "shared-password" id.
type AdminUser struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}
