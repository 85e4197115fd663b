package model

import (
	"fmt"
	"log/slog"
	"time"
)

// User is an identity record. Email is unique and compared case-sensitively as stored.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"type:varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// String omits the password hash.
func (u User) String() string {
	return fmt.Sprintf("User{ID: %d, Name: %q}", u.ID, u.Name)
}

// LogValue implements slog.LogValuer; only the id is logged.
func (u User) LogValue() slog.Value {
	return slog.GroupValue(slog.Any("id", u.ID))
}
