package models

import "time"

// Word represents a vocabulary item to be learned
type Word struct {
	ID            int64     `json:"id" db:"id"`
	Text          string    `json:"text" db:"text"`
	Translation   string    `json:"translation" db:"translation"`
	Pronunciation string    `json:"pronunciation" db:"pronunciation"`
	Topic         string    `json:"topic" db:"topic"`
	CreatedAt     time.Time `json:"created_at" db:"-"`
}
