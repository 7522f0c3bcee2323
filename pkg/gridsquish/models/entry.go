package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ukaji3/gridsquish-go/pkg/gridsquish/delta"
)

// ErrInvalidEntry indicates an entry value that is neither a string nor a
// delta object.
var ErrInvalidEntry = errors.New("invalid entry")

// Payload is the content of a compact entry: LiteralPayload or DeltaPayload.
type Payload interface {
	isPayload()
}

// LiteralPayload is stored verbatim in every cell of the key.
type LiteralPayload struct {
	Text string
}

// DeltaPayload is applied to the cell above each cell of the key.
type DeltaPayload struct {
	Step delta.Step
}

func (LiteralPayload) isPayload() {}
func (DeltaPayload) isPayload()   {}

// SamePayload reports whether two payloads are interchangeable.
func SamePayload(a, b Payload) bool {
	switch x := a.(type) {
	case LiteralPayload:
		y, ok := b.(LiteralPayload)
		return ok && x.Text == y.Text
	case DeltaPayload:
		y, ok := b.(DeltaPayload)
		return ok && x.Step.Equal(y.Step)
	}
	return false
}

// Entry is one key of the compact form.
type Entry struct {
	Key     Key
	Payload Payload
}

// Compact is the compacted form of one sheet, ordered column-major by key.
// It serializes as a JSON object mapping position keys to entries.
type Compact []Entry

// Sort orders the entries column-major.
func (c Compact) Sort() {
	sort.SliceStable(c, func(i, j int) bool { return c[i].Key.Start().Less(c[j].Key.Start()) })
}

// MarshalJSON writes the entries in order.
func (c Compact) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key.String())
		if err != nil {
			return nil, err
		}
		value, err := marshalPayload(e.Payload)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", e.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalPayload(p Payload) ([]byte, error) {
	switch x := p.(type) {
	case LiteralPayload:
		return json.Marshal(x.Text)
	case DeltaPayload:
		return json.Marshal(x.Step.Wire())
	}
	return nil, ErrInvalidEntry
}

// UnmarshalJSON reads entries in any key order and sorts them. A key that
// appears twice is rejected.
func (c *Compact) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: compact form is not an object", ErrInvalidEntry)
	}

	out := Compact{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		text, _ := tok.(string)
		if seen[text] {
			return fmt.Errorf("%w: %q appears twice", ErrInvalidKey, text)
		}
		seen[text] = true

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		key, err := ParseKey(text)
		if err != nil {
			return err
		}
		payload, err := unmarshalPayload(value)
		if err != nil {
			return fmt.Errorf("entry %q: %w", text, err)
		}
		out = append(out, Entry{Key: key, Payload: payload})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	out.Sort()
	*c = out
	return nil
}

func unmarshalPayload(value json.RawMessage) (Payload, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return nil, ErrInvalidEntry
	}

	switch value[0] {
	case '"':
		var text string
		if err := json.Unmarshal(value, &text); err != nil {
			return nil, err
		}
		return LiteralPayload{Text: text}, nil
	case '{':
		var w delta.Wire
		dec := json.NewDecoder(bytes.NewReader(value))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
		step, err := delta.FromWire(w)
		if err != nil {
			return nil, err
		}
		return DeltaPayload{Step: step}, nil
	}
	return nil, ErrInvalidEntry
}
