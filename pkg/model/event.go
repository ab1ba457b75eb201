package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

type BookingEvent struct {
	BookingID   int64     `json:"booking_id"`
	Title       string    `json:"title"`
	RoomID      int64     `json:"room_id"`
	RoomTitle   string    `json:"room_title"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Description string    `json:"description,omitempty"`
	BookerEmail string    `json:"booker_email"`
	BookerName  string    `json:"booker_name"`
	CancelledBy string    `json:"cancelled_by,omitempty"`
}

func NewBookingEvent(b *Booking) BookingEvent {
	return BookingEvent{
		BookingID:   b.ID,
		Title:       b.Title,
		RoomID:      b.MeetingRoom.Id,
		RoomTitle:   b.MeetingRoom.Value,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		Description: b.Description,
		BookerEmail: b.BookedBy.Email,
		BookerName:  b.BookedBy.DisplayName,
	}
}
