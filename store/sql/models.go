package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type storageRecord struct {
	bun.BaseModel `bun:"table:hybridauth_storage,alias:hs"`

	ID        string    `bun:"id,pk"`
	SessionID string    `bun:"session_id,notnull"`
	Key       string    `bun:"storage_key,notnull"`
	Value     string    `bun:"storage_value,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
