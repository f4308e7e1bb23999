package model

import "time"

// DefaultRole is assigned to staff accounts registered without an explicit role.
const DefaultRole = "Doctor"

// User represents a staff account allowed to sign in.
type User struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         string    `json:"role" gorm:"size:100;not null;default:'Doctor'"`
	CreatedAt    time.Time `json:"created_at"`
}
