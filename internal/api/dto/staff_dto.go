package dto

import "time"

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffLoginResponse payload.
type StaffLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
}

// CreateStaffRequest provisions a staff account.
type CreateStaffRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// StaffResponse is the external staff view; the hash never leaves.
type StaffResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}
