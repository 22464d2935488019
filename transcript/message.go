// Package transcript decodes the conversation records the assistant
// hands to the view. Decoding is lenient: a bad entry is dropped and
// reported, never allowed to blank out its well-formed neighbours.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

var ErrMalformed = errors.New("transcript: malformed entry")

type Sender int

const (
	SenderUser Sender = iota
	SenderAssistant
)

func (s Sender) String() string {
	switch s {
	case SenderUser:
		return "user"
	case SenderAssistant:
		return "assistant"
	}
	return fmt.Sprintf("Sender(%d)", int(s))
}

func ParseSender(s string) (Sender, error) {
	switch s {
	case "user":
		return SenderUser, nil
	case "assistant":
		return SenderAssistant, nil
	}
	return 0, fmt.Errorf("%w: unknown sender %q", ErrMalformed, s)
}

func (s Sender) MarshalJSON() ([]byte, error) {
	switch s {
	case SenderUser, SenderAssistant:
		return json.Marshal(s.String())
	}
	return nil, fmt.Errorf("transcript: cannot encode %s", s)
}

func (s *Sender) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("%w: sender: %v", ErrMalformed, err)
	}
	v, err := ParseSender(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type Message struct {
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// wireMessage uses pointers so a missing key is distinguishable from a
// zero value.
type wireMessage struct {
	Text      *string    `json:"text"`
	Sender    *Sender    `json:"sender"`
	Timestamp *time.Time `json:"timestamp"`
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		if errors.Is(err, ErrMalformed) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch {
	case w.Text == nil:
		return fmt.Errorf("%w: missing text", ErrMalformed)
	case w.Sender == nil:
		return fmt.Errorf("%w: missing sender", ErrMalformed)
	case w.Timestamp == nil || w.Timestamp.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrMalformed)
	}
	*m = Message{Text: *w.Text, Sender: *w.Sender, Timestamp: *w.Timestamp}
	return nil
}

// DropError describes one entry Decode discarded.
type DropError struct {
	Index int
	Err   error
}

func (e DropError) Error() string {
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

func (e DropError) Unwrap() error { return e.Err }

// Encode writes messages as a JSON array of message objects. A message
// without a timestamp is rejected, since Decode would drop it.
func Encode(msgs []Message) ([]byte, error) {
	if msgs == nil {
		msgs = []Message{}
	}
	for i, m := range msgs {
		if m.Timestamp.IsZero() {
			return nil, fmt.Errorf("encode transcript: entry %d: %w: missing timestamp", i, ErrMalformed)
		}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return data, nil
}

// Decode parses a JSON array of messages. Entries that fail to decode are
// skipped and returned as drops; an unparseable array yields no messages
// and a single drop with Index -1.
func Decode(data []byte) ([]Message, []DropError) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, []DropError{{Index: -1, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}}
	}

	msgs := make([]Message, 0, len(raw))
	var drops []DropError
	for i, r := range raw {
		var m Message
		if err := json.Unmarshal(r, &m); err != nil {
			drops = append(drops, DropError{Index: i, Err: err})
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, drops
}

// Latest returns the most recent timestamp, shown once above the transcript.
func Latest(msgs []Message) (time.Time, bool) {
	if len(msgs) == 0 {
		return time.Time{}, false
	}
	latest := msgs[0].Timestamp
	for _, m := range msgs[1:] {
		if m.Timestamp.After(latest) {
			latest = m.Timestamp
		}
	}
	return latest, true
}

// Sorted returns a copy ordered oldest first. Equal timestamps keep their
// original order.
func Sorted(msgs []Message) []Message {
	out := slices.Clone(msgs)
	slices.SortStableFunc(out, func(a, b Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}

// FormatHeader renders t relative to now for the transcript header.
func FormatHeader(t, now time.Time) string {
	t = t.In(now.Location())
	y1, m1, d1 := t.Date()
	y2, m2, d2 := now.Date()
	if y1 == y2 && m1 == m2 && d1 == d2 {
		return "Today, " + t.Format("15:04")
	}
	y3, m3, d3 := now.AddDate(0, 0, -1).Date()
	if y1 == y3 && m1 == m3 && d1 == d3 {
		return "Yesterday, " + t.Format("15:04")
	}
	return t.Format("Jan 2, 2006, 15:04")
}
