// Package models defines the remote store's persistent entities.
package models

import "time"

// User is a registered credential. PasswordHash is produced by the client;
// the server never sees the plaintext password.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Record is the authoritative copy of a client record. Writes are
// last-writer-wins by ID.
type Record struct {
	ID        string
	Fields    map[string]string
	UpdatedAt time.Time
}
