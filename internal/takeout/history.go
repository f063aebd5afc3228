package takeout

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidFormat reports an import whose top level is not a JSON array.
// This is the only fatal normalization failure; everything inside the array
// is tolerated field by field.
var ErrInvalidFormat = errors.New("takeout: expected a top-level JSON array of history entries")

// ParseHistory reads a watch-history export and returns its entries.
// Entries with missing or malformed fields are passed through with whatever
// decoded; downstream consumers decide what each absence means.
func ParseHistory(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("takeout: read history: %w", err)
	}
	return parseHistoryJSON(data)
}

func parseHistoryJSON(data []byte) ([]Entry, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrInvalidFormat
	}

	entries := make([]Entry, 0, len(raw))
	for _, msg := range raw {
		var e Entry
		if err := json.Unmarshal(msg, &e); err != nil {
			// A non-object element. Skip it; one broken record must not
			// invalidate the import.
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
