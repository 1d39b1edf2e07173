package core

import "github.com/google/uuid"

// NewID returns a unique identifier carrying a short type prefix,
// e.g. "txn_5f0be1a6-...". The prefix makes raw documents readable.
func NewID(prefix string) string {
	if prefix == "" {
		prefix = "item"
	}
	return prefix + "_" + uuid.NewString()
}
