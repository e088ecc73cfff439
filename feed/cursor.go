package feed

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// Cursor is the sort key of the last item of a page.
type Cursor struct {
	PublishedAt time.Time
	ID          string
}

type wireCursor struct {
	PublishedAt string `json:"publishedAt"`
	ID          string `json:"id"`
}

// EncodeCursor returns the transport form of c: base64 of
// {"publishedAt": <RFC3339 UTC>, "id": <id>}.
func EncodeCursor(c Cursor) string {
	payload, _ := json.Marshal(wireCursor{
		PublishedAt: c.PublishedAt.UTC().Format(time.RFC3339Nano),
		ID:          c.ID,
	})
	return base64.StdEncoding.EncodeToString(payload)
}

// DecodeCursor parses a cursor produced by EncodeCursor. Any input that does
// not yield a timestamp and a non-empty id is a *domain.ValidationError.
func DecodeCursor(s string) (Cursor, error) {
	raw, err := decodeBase64(strings.TrimSpace(s))
	if err != nil {
		return Cursor{}, invalid("cursor", "not valid base64")
	}

	var w wireCursor
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return Cursor{}, invalid("cursor", "not a valid cursor payload")
	}
	if dec.More() {
		return Cursor{}, invalid("cursor", "trailing data after cursor payload")
	}

	publishedAt, err := time.Parse(time.RFC3339Nano, w.PublishedAt)
	if err != nil {
		return Cursor{}, invalid("cursor", "publishedAt is not an ISO-8601 timestamp")
	}
	if strings.TrimSpace(w.ID) == "" {
		return Cursor{}, invalid("cursor", "id is empty")
	}

	return Cursor{PublishedAt: publishedAt.UTC(), ID: w.ID}, nil
}

// Clients put the cursor in a query string, so the URL-safe alphabet and
// unpadded forms are accepted as well.
func decodeBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, base64.CorruptInputError(0)
	}
	var lastErr error
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		b, err := enc.DecodeString(s)
		if err == nil {
			return b, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
