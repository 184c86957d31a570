package models

import (
	"time"
)

// Expedition is one distribution event splitting a sand total among participants.
// Immutable after creation.
type Expedition struct {
	ID                 int64     `db:"id"`
	InitiatorID        int64     `db:"initiator_id"`
	InitiatorUsername  string    `db:"initiator_username"`
	TotalSand          int64     `db:"total_sand"`
	SandPerMelange     float64   `db:"sand_per_melange"`
	GuildCutPercentage float64   `db:"guild_cut_percentage"`
	CreatedAt          time.Time `db:"created_at"`
}

// ExpeditionParticipant is one participant's allocation within an expedition
type ExpeditionParticipant struct {
	ID            int64     `db:"id"`
	ExpeditionID  int64     `db:"expedition_id"`
	UserID        int64     `db:"user_id"`
	Username      string    `db:"username"`
	SandAmount    int64     `db:"sand_amount"`
	MelangeAmount int64     `db:"melange_amount"`
	IsHarvester   bool      `db:"is_harvester"`
	CreatedAt     time.Time `db:"created_at"`
}

// DistributionResult summarizes a completed split
type DistributionResult struct {
	Expedition   *Expedition
	Participants []*ExpeditionParticipant
	GuildSand    int64
	GuildMelange int64
}
