package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ValidID reports whether id is a backend document id (a 24 digit hex
// ObjectID).
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// Timestamp decodes the backend's date fields, which may be RFC 3339
// strings, epoch milliseconds, empty strings or null.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] != '"' {
		var millis int64
		if err := json.Unmarshal(data, &millis); err != nil {
			return fmt.Errorf("failed to decode timestamp: %w", err)
		}
		t.Time = time.UnixMilli(millis).UTC()
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode timestamp: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return fmt.Errorf("failed to parse timestamp %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// Display formats the timestamp for tables, or a dash when unset.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 02, 2006")
}
