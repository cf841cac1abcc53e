package models

import "time"

// Achievement is an unlocked badge, e.g. the 7-day streak tracker.
type Achievement struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	Type        string    `db:"type" json:"type"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Icon        string    `db:"icon" json:"icon"`
	UnlockedAt  time.Time `db:"unlocked_at" json:"unlockedAt"`
}
