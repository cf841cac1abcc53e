package models

import "time"

// MoodEntry is a single daily check-in on the 1-10 scale.
type MoodEntry struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	MoodLevel int       `db:"mood_level" json:"moodLevel"`
	MoodType  string    `db:"mood_type" json:"moodType"`
	Notes     *string   `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// CrisisAlert is recorded whenever a check-in lands at or below the
// crisis threshold.
type CrisisAlert struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	MoodLevel int       `db:"mood_level" json:"moodLevel"`
	Notes     *string   `db:"notes" json:"notes"`
	Resolved  bool      `db:"resolved" json:"resolved"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
