package book

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrCursorMismatch means a cursor was issued for a different genre filter.
var ErrCursorMismatch = errors.New("cursor does not match query")

// CursorData is the position of a keyset page over the ISBN ordering.
type CursorData struct {
	AfterISBN string `json:"isbn"`
	Genre     string `json:"genre,omitempty"`
}

// EncodeCursor returns an opaque token for data, or "" when there is no position.
func EncodeCursor(data CursorData) string {
	if data.AfterISBN == "" {
		return ""
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(cursor string) (CursorData, error) {
	if cursor == "" {
		return CursorData{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(cursor, "="))
	if err != nil {
		return CursorData{}, fmt.Errorf("decode cursor: %w", err)
	}
	var data CursorData
	if err := json.Unmarshal(raw, &data); err != nil {
		return CursorData{}, fmt.Errorf("decode cursor: %w", err)
	}
	if data.AfterISBN == "" {
		return CursorData{}, errors.New("decode cursor: missing isbn")
	}
	return data, nil
}

// Apply positions q after the cursor. The cursor must have been issued for
// the same genre filter.
func (c CursorData) Apply(q *Query) error {
	if !strings.EqualFold(c.Genre, q.Genre) {
		return ErrCursorMismatch
	}
	q.AfterISBN = c.AfterISBN
	q.Offset = 0
	return nil
}
