package models

import "time"

// User is a registered account. Email is the login identifier and the owner
// key of every phonebook entry.
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}
