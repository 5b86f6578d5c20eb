package item

import "time"

// Document is an opaque structured payload stored alongside an item. The
// engine persists and returns it but never validates its shape.
type Document map[string]any

// Item is the normalized, source-agnostic representation of one piece of
// ingested data. Any provider payload — a health metric, a chat message, a
// calendar event — is flattened into this shape before it reaches the store.
type Item struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	SourceID  string    `json:"source_id"`
	Category  string    `json:"category"`
	ItemType  string    `json:"item_type"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content,omitempty"`
	Metadata  Document  `json:"metadata,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	IsPublic  bool      `json:"is_public"`
	SourceURL string    `json:"source_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	SyncedAt  time.Time `json:"synced_at"`
}

// Key is the sole identity of an item: (source, source-local ID). It is
// unique across the store and immutable once a row exists.
type Key struct {
	Source   string
	SourceID string
}

// Key returns the item's identity key.
func (i *Item) Key() Key {
	return Key{Source: i.Source, SourceID: i.SourceID}
}
