package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampKind tells which representation a Timestamp holds
type TimestampKind int

const (
	// TimestampPending is a server timestamp not yet assigned by the store
	TimestampPending TimestampKind = iota
	// TimestampServer is a store-assigned {seconds, nanoseconds} pair
	TimestampServer
	// TimestampNative is a plain time value
	TimestampNative
	// TimestampRaw is an encoded value kept as received
	TimestampRaw
)

// Timestamp carries an event time in whichever form it arrived
type Timestamp struct {
	Kind    TimestampKind
	Seconds int64
	Nanos   int64
	Time    time.Time
	Raw     json.RawMessage
}

// ServerTimestamp asks the store to stamp the record on insert
func ServerTimestamp() Timestamp {
	return Timestamp{Kind: TimestampPending}
}

// NativeTimestamp wraps a time value
func NativeTimestamp(t time.Time) Timestamp {
	return Timestamp{Kind: TimestampNative, Time: t}
}

// RawTimestamp keeps an encoded value for later parsing
func RawTimestamp(raw string) Timestamp {
	return Timestamp{Kind: TimestampRaw, Raw: json.RawMessage(raw)}
}

var rawLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Normalize resolves every representation to a single time value.
// The boolean is false for pending or unparseable timestamps.
func (t Timestamp) Normalize() (time.Time, bool) {
	switch t.Kind {
	case TimestampServer:
		return time.Unix(t.Seconds, t.Nanos), true
	case TimestampNative:
		return t.Time, !t.Time.IsZero()
	case TimestampRaw:
		return parseRaw(t.Raw)
	default:
		return time.Time{}, false
	}
}

func parseRaw(raw json.RawMessage) (time.Time, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return time.Time{}, false
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return time.Time{}, false
		}
		s = strings.TrimSpace(str)
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), true
	}
	if ms, ok := parseMillisFloat(s); ok {
		return time.UnixMilli(ms), true
	}
	for _, layout := range rawLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// parseMillisFloat accepts decimal or exponent notation only. NaN, Inf,
// hex floats and values outside the int64 millisecond range are rejected.
func parseMillisFloat(s string) (int64, bool) {
	if strings.ContainsAny(s, "xXpPnNiI") {
		return 0, false
	}
	ms, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return 0, false
	}
	if ms >= math.MaxInt64 || ms < math.MinInt64 {
		return 0, false
	}
	return int64(ms), true
}

type serverTimestampJSON struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TimestampServer:
		return json.Marshal(serverTimestampJSON{Seconds: t.Seconds, Nanoseconds: t.Nanos})
	case TimestampNative:
		return json.Marshal(t.Time.Format(time.RFC3339Nano))
	case TimestampRaw:
		if len(t.Raw) == 0 {
			return []byte("null"), nil
		}
		return t.Raw, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ServerTimestamp()
	case data[0] == '{':
		var st serverTimestampJSON
		if err := json.Unmarshal(data, &st); err != nil {
			return fmt.Errorf("failed to decode server timestamp: %w", err)
		}
		*t = Timestamp{Kind: TimestampServer, Seconds: st.Seconds, Nanos: st.Nanoseconds}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
			*t = NativeTimestamp(parsed)
			return nil
		}
		*t = RawTimestamp(string(data))
	default:
		*t = RawTimestamp(string(data))
	}
	return nil
}

// Value implements driver.Valuer; a pending timestamp becomes NULL
func (t Timestamp) Value() (driver.Value, error) {
	if t.Kind == TimestampPending {
		return nil, nil
	}
	if ts, ok := t.Normalize(); ok {
		return ts, nil
	}
	return nil, nil
}

// Scan implements sql.Scanner
func (t *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ServerTimestamp()
	case time.Time:
		*t = NativeTimestamp(v)
	case []byte:
		*t = RawTimestamp(strconv.Quote(string(v)))
	case string:
		*t = RawTimestamp(strconv.Quote(v))
	default:
		return fmt.Errorf("unsupported timestamp column type %T", src)
	}
	return nil
}
