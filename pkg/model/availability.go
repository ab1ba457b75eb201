package model

import "time"

// Availability is the answer to "is this room free for this window".
type Availability struct {
	RoomID     int64     `json:"room_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Available  bool      `json:"available"`
	Verdict    string    `json:"verdict"`
	ConflictID any       `json:"conflict_id,omitempty"`
}

// DaySchedule is the calendar view of one day, grouped by room.
type DaySchedule struct {
	Date     string         `json:"date"`
	Timezone string         `json:"timezone"`
	Rooms    []RoomSchedule `json:"rooms"`
}

type RoomSchedule struct {
	RoomID    int64      `json:"room_id"`
	RoomTitle string     `json:"room_title"`
	Bookings  []*Booking `json:"bookings"`
}
