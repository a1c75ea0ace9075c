package models

import "time"

// Admin is an operator allowed to manage registrations.
type Admin struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// AdminInfo describes the authenticated admin in responses.
type AdminInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Info strips credentials from the admin.
func (a *Admin) Info() AdminInfo {
	return AdminInfo{ID: a.ID, Username: a.Username}
}
