package models

import (
	"time"
)

// User represents a guild member with melange accrual totals
type User struct {
	UserID       int64     `db:"user_id"`
	Username     string    `db:"username"`
	TotalMelange int64     `db:"total_melange"`
	PaidMelange  int64     `db:"paid_melange"`
	CreatedAt    time.Time `db:"created_at"`
	LastUpdated  time.Time `db:"last_updated"`
}

// PendingMelange returns the melange accrued but not yet paid out
func (u *User) PendingMelange() int64 {
	return u.TotalMelange - u.PaidMelange
}

// UserRef identifies a user in a command invocation (id + display name)
type UserRef struct {
	ID       int64
	Username string
}
