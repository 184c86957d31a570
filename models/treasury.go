package models

import (
	"time"
)

// GuildTreasury is the singleton shared balance account.
// Reads select the most recent row if more than one exists.
type GuildTreasury struct {
	ID           int64     `db:"id"`
	TotalSand    int64     `db:"total_sand"`
	TotalMelange int64     `db:"total_melange"`
	CreatedAt    time.Time `db:"created_at"`
	LastUpdated  time.Time `db:"last_updated"`
}

// GuildTransactionType categorizes treasury-affecting actions
type GuildTransactionType string

const (
	GuildTransactionTypeExpeditionCut GuildTransactionType = "expedition_cut"
	GuildTransactionTypeDeposit       GuildTransactionType = "deposit"
	GuildTransactionTypeWithdrawal    GuildTransactionType = "withdrawal"
)

// GuildTransaction is an append-only audit row for every treasury change
type GuildTransaction struct {
	ID             int64                `db:"id"`
	Type           GuildTransactionType `db:"transaction_type"`
	SandAmount     int64                `db:"sand_amount"`
	MelangeAmount  int64                `db:"melange_amount"`
	ExpeditionID   *int64               `db:"expedition_id"`
	AdminUserID    int64                `db:"admin_user_id"`
	AdminUsername  string               `db:"admin_username"`
	TargetUserID   *int64               `db:"target_user_id"`
	TargetUsername *string              `db:"target_username"`
	Description    *string              `db:"description"`
	CreatedAt      time.Time            `db:"created_at"`
}
