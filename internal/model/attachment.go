package model

import (
	"time"
)

type Attachment struct {
	ID           string    `db:"id" json:"id"`
	PostID       string    `db:"post_id" json:"post_id"`             // Owning post, set once at creation
	OriginalName string    `db:"original_name" json:"original_name"` // Client-supplied, stored as-is
	StoredName   string    `db:"stored_name" json:"stored_name"`     // <32 hex>_<original name>
	StoragePath  string    `db:"storage_path" json:"-"`
	Size         int64     `db:"size" json:"size"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
