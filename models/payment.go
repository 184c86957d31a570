package models

import (
	"time"
)

// MelangePayment is an append-only settlement record.
// The sum of a user's payments always equals their paid_melange total.
type MelangePayment struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	Username      string    `db:"username"`
	MelangeAmount int64     `db:"melange_amount"`
	AdminUserID   *int64    `db:"admin_user_id"`
	AdminUsername *string   `db:"admin_username"`
	Description   *string   `db:"description"`
	CreatedAt     time.Time `db:"created_at"`
}

// PayrollResult summarizes a batch settlement across all users with pending melange
type PayrollResult struct {
	UsersPaid int
	TotalPaid int64
	Payments  []*MelangePayment
}
