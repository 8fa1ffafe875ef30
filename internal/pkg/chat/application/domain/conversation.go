package chat

import "time"

// Kind discriminates the two conversation shapes.
type Kind string

const (
	KindDirect Kind = "direct"
	KindGroup  Kind = "group"
)

// Conversation is immutable once created. Direct conversations are unique per
// unordered pair of members; the pair is materialized as DirectKey
// ("minID:maxID") so the store can enforce uniqueness with an index.
type Conversation struct {
	ID        string    `db:"id"`
	Kind      Kind      `db:"kind"`
	CreatedBy *string   `db:"created_by"` // set for group conversations only
	CreatedAt time.Time `db:"created_at"`
	DirectKey *string   `db:"direct_key"` // set for direct conversations only
}

// DirectKey orders the pair so that (a,b) and (b,a) map to the same key.
func DirectKey(a, b string) string {
	if a < b {
		return a + ":" + b
	}
	return b + ":" + a
}
