package models

import (
	"time"
)

// GlobalSetting is one key/value row backing the in-memory settings cache.
// Last writer wins on conflict.
type GlobalSetting struct {
	Key         string    `db:"key"`
	Value       string    `db:"value"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
	LastUpdated time.Time `db:"last_updated"`
}
