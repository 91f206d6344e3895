package models

import (
	"time"

	"github.com/google/uuid"
)

// Connection is one linked aggregator item. Stored in pluggy_items.
type Connection struct {
	ID          uuid.UUID `db:"id"`
	ItemID      string    `db:"item_id"`
	Institution string    `db:"institution"`
	ImageURL    string    `db:"image_url"`
	UserID      uuid.UUID `db:"user_id"`
	ConnectedAt time.Time `db:"connected_at"`
}
