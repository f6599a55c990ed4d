// Package pagination implements the opaque keyset cursors used by the log
// listing endpoints. A cursor pins the (created_at, id) position of the last
// row a client saw, so pages stay stable while new questions keep arriving.
package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Cursor is a decoded keyset position in a listing ordered by created_at
// descending with id as tiebreaker.
type Cursor struct {
	LastID    string
	Timestamp time.Time
}

// ErrInvalidCursor is returned for tokens that did not come from EncodeCursor.
var ErrInvalidCursor = errors.New("invalid cursor format")

// EncodeCursor packs the last row's id and created_at into an opaque token.
// URL-safe base64 keeps the token usable as a query parameter and CLI flag
// without escaping.
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	raw := lastID + "|" + timestamp.UTC().Format(time.RFC3339Nano)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor unpacks a token produced by EncodeCursor. An empty token
// decodes to nil, meaning the first page.
func DecodeCursor(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	id, ts, ok := strings.Cut(string(decoded), "|")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}

	timestamp, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &Cursor{LastID: id, Timestamp: timestamp}, nil
}
