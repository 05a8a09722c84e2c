package models

import "time"

// Post is a single timeline entry. UserID is nil only for rows created
// before authentication was enabled; such posts cannot be modified by anyone.
type Post struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Content   string    `json:"content" db:"content"`
	UserID    *int64    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"timestamp" db:"created_at"`
}
