// Package availability decides whether a meeting room is free for a time window.
//
// The check reads one snapshot of booking records from a Source and applies the
// half-open overlap test [start, end) against every non-cancelled record of the same
// room. A failed read never yields "available": it produces an Unknown verdict that
// callers must treat as not bookable.
//
// Known race: the check and the booking write that follows it are not atomic, and the
// booking store enforces no uniqueness on (room, window). Two concurrent callers can both
// see Available and both create overlapping bookings. Closing that gap needs a
// conditional write in the store that owns the records.
package availability
