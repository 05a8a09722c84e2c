package models

import "time"

type User struct {
	ID           int64      `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Token        *string    `json:"-" db:"token"`
	TokenExpiry  *time.Time `json:"-" db:"token_expiry"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
