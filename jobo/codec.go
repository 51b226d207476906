package jobo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"
)

// encodeBody serializes a request value. Wire names come from the json tags
// of the request types; unset optional fields carry omitempty.
func encodeBody(v any) (io.Reader, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jobo: encode request: %w", err)
	}
	return bytes.NewReader(data), nil
}

// decodeBody deserializes a response body into v. An empty body leaves v at
// its zero value.
func decodeBody(data []byte, v any) error {
	if v == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("jobo: decode response: %w", err)
	}
	return nil
}

// formatTime renders a timestamp the way the API expects it in query strings
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampLayouts are tried in order. Times without an offset are UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

// timestamp decodes the server's time values, which do not always carry a
// zone offset
type timestamp struct {
	time.Time
}

func (t *timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("jobo: timestamp must be a string: %w", err)
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("jobo: invalid timestamp %q", s)
}

// ptr returns nil for a missing or empty timestamp
func (t *timestamp) ptr() *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// query collects optional query parameters, skipping unset ones
type query url.Values

func (q query) setString(key, value string) {
	if value != "" {
		url.Values(q).Set(key, value)
	}
}

func (q query) setInt(key string, value int) {
	url.Values(q).Set(key, strconv.Itoa(value))
}

func (q query) setBool(key string, value *bool) {
	if value != nil {
		url.Values(q).Set(key, strconv.FormatBool(*value))
	}
}

func (q query) setTime(key string, value *time.Time) {
	if value != nil {
		url.Values(q).Set(key, formatTime(*value))
	}
}
