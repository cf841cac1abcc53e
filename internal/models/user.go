package models

import "time"

// User is a registered account. Password holds the bcrypt hash and is
// never serialized.
type User struct {
	ID            string    `db:"id" json:"id"`
	Username      string    `db:"username" json:"username"`
	Password      string    `db:"password" json:"-"`
	DisplayName   *string   `db:"display_name" json:"displayName"`
	Streak        int       `db:"streak" json:"streak"`
	TotalCheckIns int       `db:"total_check_ins" json:"totalCheckIns"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
