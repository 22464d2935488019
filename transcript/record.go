package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"murmur/log"
)

// Record is a stored conversation as the assistant persists it. The
// message list travels as a serialized JSON string, not a nested array.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  string    `json:"messages"`
}

func NewRecord(title string, msgs []Message) (Record, error) {
	data, err := Encode(msgs)
	if err != nil {
		return Record{}, err
	}
	now := time.Now().UTC()
	updated := now
	if latest, ok := Latest(msgs); ok {
		updated = latest
	}
	return Record{
		ID:        uuid.New(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: updated,
		Messages:  string(data),
	}, nil
}

// Decode returns the record's messages, oldest first, and how many
// entries were dropped. It never fails: drops are logged and the rest
// are returned.
func (r Record) Decode() ([]Message, int) {
	msgs, drops := Decode([]byte(r.Messages))
	for _, d := range drops {
		log.TranscriptDrop(d.Index, d.Err)
	}
	return Sorted(msgs), len(drops)
}

// Load reads a record file. Only the outer record must be well formed;
// the embedded messages are decoded leniently by Record.Decode.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read transcript: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	return r, nil
}
