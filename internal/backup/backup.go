// Package backup exports and imports the persistent subset of the document.
//
// Export hands a pretty-printed JSON archive to whoever offers file
// downloads; import validates an uploaded document without mutating anything,
// so the caller can confirm the overwrite before applying it via the store.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// ContentType is the only accepted archive media type.
const ContentType = "application/json"

var (
	// ErrInvalidBackup reports a payload that is not a recognizable
	// document: not JSON, or missing the transaction list or settings.
	ErrInvalidBackup = errors.New("invalid backup structure")

	// ErrUnsupportedType reports a file whose declared type is not JSON.
	ErrUnsupportedType = errors.New("backup file must be application/json")
)

// Archive is an exported document ready to be offered as a download.
type Archive struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Export serializes the persistent subset of doc, pretty-printed, with the
// current date embedded in the filename.
func Export(doc core.Document, now time.Time) (Archive, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Archive{}, fmt.Errorf("serialize backup: %w", err)
	}
	return Archive{
		Filename:    fmt.Sprintf("fintrack-backup-%s.json", core.FormatDate(now)),
		ContentType: ContentType,
		Data:        data,
	}, nil
}

// Parse validates an uploaded archive and returns the fully merged candidate
// document. It mutates nothing: the caller confirms the overwrite and then
// hands the candidate to the store's Restore. The declared content type must
// be application/json; the payload must at minimum carry a transaction list
// (even empty) and a settings record.
func Parse(contentType string, data []byte) (core.Document, error) {
	if !strings.EqualFold(strings.TrimSpace(contentType), ContentType) {
		return core.Document{}, ErrUnsupportedType
	}
	doc, err := store.DecodeBackup(data)
	if err != nil {
		if errors.Is(err, store.ErrCorruptData) {
			return core.Document{}, ErrInvalidBackup
		}
		return core.Document{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return doc, nil
}
