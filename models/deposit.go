package models

import (
	"time"
)

// DepositType categorizes how a sand deposit entered the ledger
type DepositType string

const (
	DepositTypeSolo       DepositType = "solo"
	DepositTypeExpedition DepositType = "expedition"
	DepositTypeGuild      DepositType = "guild"
)

// Deposit is an append-only ledger entry for harvested sand.
// Conversion happens before insertion; the row records the rate that was used.
type Deposit struct {
	ID             int64       `db:"id"`
	UserID         int64       `db:"user_id"`
	Username       string      `db:"username"`
	SandAmount     int64       `db:"sand_amount"`
	Type           DepositType `db:"type"`
	ExpeditionID   *int64      `db:"expedition_id"`
	MelangeAmount  *int64      `db:"melange_amount"`
	ConversionRate *float64    `db:"conversion_rate"`
	CreatedAt      time.Time   `db:"created_at"`
}

// DepositResult is returned to the command layer after recording a deposit
type DepositResult struct {
	Deposit       *Deposit
	Melange       int64
	SandRemainder int64
	NewTotal      int64
}
