package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"roombook/pkg/logger"
)

type mockSource struct {
	fetchFunc func(ctx context.Context, q Query) ([]Record, error)
	calls     int
	lastQuery Query
}

func (m *mockSource) FetchBookings(ctx context.Context, q Query) ([]Record, error) {
	m.calls++
	m.lastQuery = q
	return m.fetchFunc(ctx, q)
}

func staticSource(records ...Record) *mockSource {
	return &mockSource{fetchFunc: func(context.Context, Query) ([]Record, error) {
		return records, nil
	}}
}

type countingObserver map[string]int

func (o countingObserver) ObserveVerdict(verdict string) {
	o[verdict]++
}

func at(hhmm string) time.Time {
	t, err := time.Parse(time.RFC3339, "2024-01-10T"+hhmm+":00Z")
	if err != nil {
		panic(err)
	}
	return t
}

func booking(id int, room any, start, end string, status string) Record {
	return Record{
		FieldID:          id,
		FieldMeetingRoom: map[string]any{"Id": room, "Value": "Room"},
		FieldStartTime:   at(start).Format(time.RFC3339),
		FieldEndTime:     at(end).Format(time.RFC3339),
		FieldStatus:      map[string]any{"Value": status},
	}
}

func newTestChecker(src Source) *Checker {
	return NewChecker(src, logger.Discard(), nil)
}

func TestChecker_Check(t *testing.T) {
	tests := []struct {
		name        string
		records     []Record
		roomID      int64
		start, end  string
		wantVerdict Verdict
	}{
		{
			name:        "no bookings is available",
			records:     nil,
			roomID:      7,
			start:       "10:00",
			end:         "11:00",
			wantVerdict: Available,
		},
		{
			name:        "different room never interferes",
			records:     []Record{booking(1, 8, "10:00", "11:00", "Confirmed")},
			roomID:      7,
			start:       "10:00",
			end:         "11:00",
			wantVerdict: Available,
		},
		{
			name:        "cancelled booking is ignored",
			records:     []Record{booking(1, 7, "10:00", "11:00", "Cancelled")},
			roomID:      7,
			start:       "10:00",
			end:         "11:00",
			wantVerdict: Available,
		},
		{
			name:        "exact overlap conflicts",
			records:     []Record{booking(1, 7, "10:00", "11:00", "Confirmed")},
			roomID:      7,
			start:       "10:00",
			end:         "11:00",
			wantVerdict: Conflict,
		},
		{
			name:        "partial overlap conflicts",
			records:     []Record{booking(1, 7, "10:00", "11:00", "Confirmed")},
			roomID:      7,
			start:       "10:30",
			end:         "11:30",
			wantVerdict: Conflict,
		},
		{
			name:        "candidate ending inside existing conflicts",
			records:     []Record{booking(1, 7, "10:00", "11:00", "Pending")},
			roomID:      7,
			start:       "09:30",
			end:         "10:01",
			wantVerdict: Conflict,
		},
		{
			name:        "adjacent after is available",
			records:     []Record{booking(1, 7, "10:00", "11:00", "Confirmed")},
			roomID:      7,
			start:       "11:00",
			end:         "12:00",
			wantVerdict: Available,
		},
		{
			name:        "adjacent before is available",
			records:     []Record{booking(1, 7, "10:00", "11:00", "Confirmed")},
			roomID:      7,
			start:       "09:00",
			end:         "10:00",
			wantVerdict: Available,
		},
		{
			name:        "candidate containing existing conflicts",
			records:     []Record{booking(1, 7, "10:30", "10:45", "Confirmed")},
			roomID:      7,
			start:       "10:00",
			end:         "12:00",
			wantVerdict: Conflict,
		},
		{
			name:        "existing containing candidate conflicts",
			records:     []Record{booking(1, 7, "09:00", "17:00", "Confirmed")},
			roomID:      7,
			start:       "12:00",
			end:         "12:15",
			wantVerdict: Conflict,
		},
		{
			name: "record without room reference is ignored",
			records: []Record{{
				FieldID:        1,
				FieldStartTime: at("10:00").Format(time.RFC3339),
				FieldEndTime:   at("11:00").Format(time.RFC3339),
			}},
			roomID:      7,
			start:       "10:00",
			end:         "11:00",
			wantVerdict: Available,
		},
		{
			name: "record with unreadable times is ignored",
			records: []Record{{
				FieldID:        1,
				FieldRoomID:    7,
				FieldStartTime: "yesterday-ish",
				FieldEndTime:   at("11:00").Format(time.RFC3339),
			}},
			roomID:      7,
			start:       "10:00",
			end:         "11:00",
			wantVerdict: Available,
		},
		{
			name: "cancelled as plain string is ignored",
			records: []Record{{
				FieldID:        1,
				FieldRoomID:    7,
				FieldStartTime: at("10:00"),
				FieldEndTime:   at("11:00"),
				FieldStatus:    "Cancelled",
			}},
			roomID:      7,
			start:       "10:00",
			end:         "11:00",
			wantVerdict: Available,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := newTestChecker(staticSource(tt.records...))

			result := checker.Check(context.Background(), tt.roomID, at(tt.start), at(tt.end))

			if result.Verdict != tt.wantVerdict {
				t.Errorf("expected verdict %s, got %s", tt.wantVerdict, result.Verdict)
			}
			if result.Available() != (tt.wantVerdict == Available) {
				t.Errorf("Available() disagrees with verdict %s", result.Verdict)
			}
			if got := checker.IsRoomAvailable(context.Background(), tt.roomID, at(tt.start), at(tt.end)); got != (tt.wantVerdict == Available) {
				t.Errorf("IsRoomAvailable() = %v", got)
			}
		})
	}
}

func TestChecker_FetchFailureFailsClosed(t *testing.T) {
	fetchErr := errors.New("connector: 503 service unavailable")
	src := &mockSource{fetchFunc: func(context.Context, Query) ([]Record, error) {
		return nil, fetchErr
	}}
	observer := countingObserver{}
	checker := NewChecker(src, logger.Discard(), observer)

	result := checker.Check(context.Background(), 7, at("10:00"), at("11:00"))

	if result.Verdict != Unknown {
		t.Fatalf("expected unknown verdict, got %s", result.Verdict)
	}
	if result.Available() {
		t.Error("a failed read must never be reported as available")
	}
	if !errors.Is(result.Err, fetchErr) {
		t.Errorf("expected fetch error attached, got %v", result.Err)
	}
	if checker.IsRoomAvailable(context.Background(), 7, at("10:00"), at("11:00")) {
		t.Error("IsRoomAvailable must be false when the read fails")
	}
	if observer["unknown"] != 2 {
		t.Errorf("expected unknown verdicts to be counted, got %v", observer)
	}
}

func TestChecker_CancelledContextFailsClosed(t *testing.T) {
	src := &mockSource{fetchFunc: func(ctx context.Context, _ Query) ([]Record, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestChecker(src).Check(ctx, 7, at("10:00"), at("11:00"))

	if result.Verdict != Unknown || !errors.Is(result.Err, context.Canceled) {
		t.Errorf("expected unknown verdict with context error, got %+v", result)
	}
}

func TestChecker_RoomReferenceShapesMatchIdentically(t *testing.T) {
	shapes := map[string]Record{
		"nested object": {
			FieldMeetingRoom: map[string]any{"Id": 7},
		},
		"flattened reference": {
			FieldMeetingRoomID: "7",
		},
		"plain scalar": {
			FieldRoomID: 7.0,
		},
	}

	for name, rec := range shapes {
		t.Run(name, func(t *testing.T) {
			rec[FieldID] = 99
			rec[FieldStartTime] = at("10:00").Format(time.RFC3339)
			rec[FieldEndTime] = at("11:00").Format(time.RFC3339)

			checker := newTestChecker(staticSource(rec))

			if got := checker.Check(context.Background(), 7, at("10:30"), at("10:45")); got.Verdict != Conflict {
				t.Errorf("expected conflict for room 7, got %s", got.Verdict)
			}
			if got := checker.Check(context.Background(), 8, at("10:30"), at("10:45")); got.Verdict != Available {
				t.Errorf("expected room 8 to be available, got %s", got.Verdict)
			}
		})
	}
}

func TestChecker_ShortCircuitsOnFirstConflict(t *testing.T) {
	checker := newTestChecker(staticSource(
		booking(1, 7, "08:00", "09:00", "Confirmed"),
		booking(2, 7, "10:00", "11:00", "Confirmed"),
		booking(3, 7, "10:15", "10:30", "Confirmed"),
	))

	result := checker.Check(context.Background(), 7, at("10:00"), at("10:30"))

	if result.Verdict != Conflict {
		t.Fatalf("expected conflict, got %s", result.Verdict)
	}
	if result.ConflictID != 2 {
		t.Errorf("expected first conflicting record 2, got %v", result.ConflictID)
	}
}

func TestChecker_SingleReadWithSelectedFields(t *testing.T) {
	src := staticSource()
	checker := newTestChecker(src)

	checker.Check(context.Background(), 7, at("10:00"), at("11:00"))

	if src.calls != 1 {
		t.Errorf("expected exactly one read, got %d", src.calls)
	}
	q := src.lastQuery
	if q.RoomID != 7 || !q.Start.Equal(at("10:00")) || !q.End.Equal(at("11:00")) {
		t.Errorf("unexpected query %+v", q)
	}
	want := map[string]bool{FieldMeetingRoom: false, FieldMeetingRoomID: false, FieldRoomID: false, FieldStatus: false}
	for _, f := range q.Fields {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for f, seen := range want {
		if !seen {
			t.Errorf("expected field %q to be selected", f)
		}
	}
}

func TestChecker_Scenario(t *testing.T) {
	checker := newTestChecker(staticSource(booking(1, 7, "09:00", "10:00", "Confirmed")))
	ctx := context.Background()

	if checker.IsRoomAvailable(ctx, 7, at("09:30"), at("09:45")) {
		t.Error("room 7 09:30-09:45 should be taken")
	}
	if !checker.IsRoomAvailable(ctx, 7, at("10:00"), at("10:30")) {
		t.Error("room 7 10:00-10:30 should be free")
	}
	if !checker.IsRoomAvailable(ctx, 8, at("09:30"), at("09:45")) {
		t.Error("room 8 09:30-09:45 should be free")
	}
}

func TestChecker_ObservesVerdicts(t *testing.T) {
	observer := countingObserver{}
	checker := NewChecker(staticSource(booking(1, 7, "10:00", "11:00", "Confirmed")), logger.Discard(), observer)

	checker.Check(context.Background(), 7, at("10:00"), at("11:00"))
	checker.Check(context.Background(), 7, at("11:00"), at("12:00"))

	if observer["conflict"] != 1 || observer["available"] != 1 {
		t.Errorf("unexpected verdict counts %v", observer)
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd string
		want                       bool
	}{
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"touching end", "09:00", "10:00", "10:00", "11:00", false},
		{"touching start", "11:00", "12:00", "10:00", "11:00", false},
		{"disjoint", "08:00", "09:00", "10:00", "11:00", false},
		{"contains", "09:00", "12:00", "10:00", "11:00", true},
		{"one minute overlap", "10:59", "11:30", "10:00", "11:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(at(tt.aStart), at(tt.aEnd), at(tt.bStart), at(tt.bEnd))
			if got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if sym := Overlaps(at(tt.bStart), at(tt.bEnd), at(tt.aStart), at(tt.aEnd)); sym != got {
				t.Errorf("Overlaps is not symmetric")
			}
		})
	}
}

type stubLister struct {
	items  []map[string]any
	err    error
	table  string
	fields []string
}

func (s *stubLister) ListItems(_ context.Context, table string, fields []string) ([]map[string]any, error) {
	s.table = table
	s.fields = fields
	return s.items, s.err
}

func TestConnectorSource(t *testing.T) {
	lister := &stubLister{items: []map[string]any{
		{FieldID: 1, FieldMeetingRoomID: 7, FieldStartTime: "2024-01-10T09:00:00Z", FieldEndTime: "2024-01-10T10:00:00Z"},
	}}
	checker := newTestChecker(NewConnectorSource(lister, "Bookings"))

	if checker.IsRoomAvailable(context.Background(), 7, at("09:30"), at("09:45")) {
		t.Error("expected connector record to conflict")
	}
	if lister.table != "Bookings" || len(lister.fields) != len(SelectFields) {
		t.Errorf("unexpected connector call table=%q fields=%v", lister.table, lister.fields)
	}

	lister.err = errors.New("throttled")
	if checker.IsRoomAvailable(context.Background(), 8, at("09:30"), at("09:45")) {
		t.Error("expected connector failure to fail closed")
	}
}
