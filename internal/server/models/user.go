// Package models defines the server-side entities shared by the
// repositories, services and the HTTP layer.
package models

import "time"

// User is a registered author. PasswordHash never leaves the server.
type User struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
