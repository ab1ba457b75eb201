package availability

import (
	"context"
	"time"

	"roombook/pkg/logger"
)

// Query is the hint handed to a Source. Sources may use it to pre-filter, but they must
// return every record that could belong to RoomID and overlap [Start, End).
type Query struct {
	RoomID int64
	Start  time.Time
	End    time.Time
	Fields []string
}

type Source interface {
	FetchBookings(ctx context.Context, q Query) ([]Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, q Query) ([]Record, error)

func (f SourceFunc) FetchBookings(ctx context.Context, q Query) ([]Record, error) {
	return f(ctx, q)
}

type Verdict int

const (
	Available Verdict = iota
	Conflict
	Unknown
)

func (v Verdict) String() string {
	switch v {
	case Available:
		return "available"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Result carries the verdict plus the evidence behind it. Only Available permits a booking.
type Result struct {
	Verdict    Verdict
	ConflictID any
	Err        error
}

func (r Result) Available() bool {
	return r.Verdict == Available
}

type VerdictObserver interface {
	ObserveVerdict(verdict string)
}

type Checker struct {
	source   Source
	log      *logger.Logger
	observer VerdictObserver
}

func NewChecker(source Source, log *logger.Logger, observer VerdictObserver) *Checker {
	return &Checker{
		source:   source,
		log:      log,
		observer: observer,
	}
}

// Overlaps is the half-open interval test. Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Check reports whether roomID is free for [start, end). Callers must reject start >= end
// beforehand. The context bounds the single read; the checker adds no timeout of its own.
func (c *Checker) Check(ctx context.Context, roomID int64, start, end time.Time) Result {
	records, err := c.source.FetchBookings(ctx, Query{
		RoomID: roomID,
		Start:  start,
		End:    end,
		Fields: SelectFields,
	})
	if err != nil {
		c.log.Error("Availability check failed closed",
			"room_id", roomID,
			"start", start,
			"end", end,
			"error", err,
		)
		return c.finish(Result{Verdict: Unknown, Err: err})
	}

	for _, rec := range records {
		recRoom, ok := ResolveRoomID(rec)
		if !ok || recRoom != roomID {
			continue
		}
		if IsCancelled(rec) {
			continue
		}

		recStart, recEnd, ok := Interval(rec)
		if !ok {
			c.log.Warn("Skipping booking with unreadable times",
				"room_id", roomID,
				"booking_id", recordID(rec),
			)
			continue
		}

		if Overlaps(start, end, recStart, recEnd) {
			c.log.Debug("Room not available",
				"room_id", roomID,
				"start", start,
				"end", end,
				"conflict_id", recordID(rec),
			)
			return c.finish(Result{Verdict: Conflict, ConflictID: recordID(rec)})
		}
	}

	return c.finish(Result{Verdict: Available})
}

// IsRoomAvailable collapses Check to a boolean: false on conflict and on any read failure.
func (c *Checker) IsRoomAvailable(ctx context.Context, roomID int64, start, end time.Time) bool {
	return c.Check(ctx, roomID, start, end).Available()
}

func (c *Checker) finish(r Result) Result {
	if c.observer != nil {
		c.observer.ObserveVerdict(r.Verdict.String())
	}
	return r
}
