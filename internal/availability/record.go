package availability

import (
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Field names as exposed by the booking list.
const (
	FieldID            = "ID"
	FieldStartTime     = "StartTime"
	FieldEndTime       = "EndTime"
	FieldStatus        = "Status"
	FieldMeetingRoom   = "MeetingRoom"
	FieldMeetingRoomID = "MeetingRoom#Id"
	FieldRoomID        = "MeetingRoomId"

	StatusCancelled = "Cancelled"
)

// SelectFields lists every column the checker reads, including all three room shapes.
var SelectFields = []string{
	FieldID,
	FieldStartTime,
	FieldEndTime,
	FieldStatus,
	FieldMeetingRoom,
	FieldMeetingRoomID,
	FieldRoomID,
}

// Record is one booking row as returned by a Source.
type Record map[string]any

// ResolveRoomID normalizes the room reference of a record. It tries the nested lookup
// object (MeetingRoom.Id), then the flattened reference (MeetingRoom#Id), then the plain
// scalar (MeetingRoomId). A record with no usable reference resolves to nothing and can
// never match a room.
func ResolveRoomID(r Record) (int64, bool) {
	if nested, ok := asMap(r[FieldMeetingRoom]); ok {
		if id, ok := toID(nested["Id"]); ok {
			return id, true
		}
	}
	if id, ok := toID(r[FieldMeetingRoomID]); ok {
		return id, true
	}
	if id, ok := toID(r[FieldRoomID]); ok {
		return id, true
	}
	return 0, false
}

// IsCancelled accepts both the choice object {"Value": "Cancelled"} and a plain string.
func IsCancelled(r Record) bool {
	return statusValue(r[FieldStatus]) == StatusCancelled
}

// Interval returns the record's booked window. ok is false when either bound is missing
// or unparseable.
func Interval(r Record) (start, end time.Time, ok bool) {
	start, ok = toTime(r[FieldStartTime])
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok = toTime(r[FieldEndTime])
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func recordID(r Record) any {
	for _, key := range []string{FieldID, "Id", "_id"} {
		if v, ok := r[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func statusValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	}
	if m, ok := asMap(v); ok {
		if s, ok := m["Value"].(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// toID accepts integral numbers and numeric strings. Zero, negatives and fractions are
// treated as absent.
func toID(v any) (int64, bool) {
	var id int64
	switch n := v.(type) {
	case int:
		id = int64(n)
	case int32:
		id = int64(n)
	case int64:
		id = n
	case uint32:
		id = int64(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || n >= math.MaxInt64 {
			return 0, false
		}
		id = int64(n)
	case float32:
		return toID(float64(n))
	case json.Number:
		return toID(string(n))
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return 0, false
			}
			return toID(f)
		}
		id = parsed
	default:
		return 0, false
	}

	if id <= 0 {
		return 0, false
	}
	return id, true
}

// Zone-less timestamps are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case interface{ Time() time.Time }:
		tt := t.Time()
		return tt, !tt.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// asMap also accepts named map types such as bson.M without importing the driver.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if m, ok := v.(Record); ok {
		return m, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}

	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
