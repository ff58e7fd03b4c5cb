package model

import "time"

// DefaultCredits is the balance granted to a fresh account.
const DefaultCredits = 100

// User represents a registered account. The email is the primary key;
// username is a unique display name. Both columns use a binary
// collation so lookups and uniqueness are case-sensitive, matching
// the exact-match login semantics. Credits regenerate over time and
// are spent on story generation.
type User struct {
	Email        string    `json:"email" gorm:"primaryKey;type:varchar(255) COLLATE utf8mb4_bin"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(255) COLLATE utf8mb4_bin;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Credits      int       `json:"credits" gorm:"not null;default:100"`
	LastRefill   time.Time `json:"last_refill"`
	Stories      StoryList `json:"stories" gorm:"type:json"`
	CreatedAt    time.Time `json:"created_at"`
}
