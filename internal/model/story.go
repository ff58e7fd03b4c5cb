package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Story is one generated story in a user's history. History is
// append-only: entries are never edited or removed.
type Story struct {
	ID        uuid.UUID `json:"id"`
	Prompt    string    `json:"prompt"`
	Text      string    `json:"story"`
	Model     string    `json:"model"` // short model identifier that served the request
	Genre     string    `json:"genre"`
	Length    int       `json:"length"` // requested word-count target
	CreatedAt time.Time `json:"timestamp"`
}

// StoryList is the persisted form of a user's story history, stored as
// a JSON column on the users row.
type StoryList []Story

// Value implements driver.Valuer.
func (l StoryList) Value() (driver.Value, error) {
	if l == nil {
		l = StoryList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal stories: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StoryList) Scan(value interface{}) error {
	if value == nil {
		*l = StoryList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported stories column type %T", value)
	}
	if len(data) == 0 {
		*l = StoryList{}
		return nil
	}
	return json.Unmarshal(data, l)
}
