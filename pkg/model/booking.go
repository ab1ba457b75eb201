package model

import (
	"strings"
	"time"
)

const (
	BookingStatusConfirmed = "Confirmed"
	BookingStatusCancelled = "Cancelled"
)

// Booking is stored in the same shape the list connector exposes, so raw documents
// can be fed to the availability check without translation.
type Booking struct {
	ID          int64     `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"Title"`
	MeetingRoom LookupRef `json:"meeting_room" bson:"MeetingRoom"`
	StartTime   time.Time `json:"start_time" bson:"StartTime"`
	EndTime     time.Time `json:"end_time" bson:"EndTime"`
	Status      Choice    `json:"status" bson:"Status"`
	BookedBy    Person    `json:"booked_by" bson:"BookedBy"`
	Description string    `json:"description,omitempty" bson:"Description,omitempty"`
	Created     time.Time `json:"created" bson:"Created"`
}

type LookupRef struct {
	Id    int64  `json:"id" bson:"Id"`
	Value string `json:"value" bson:"Value"`
}

type Choice struct {
	Value string `json:"value" bson:"Value"`
}

type Person struct {
	Claims      string `json:"claims,omitempty" bson:"Claims,omitempty"`
	DisplayName string `json:"display_name" bson:"DisplayName"`
	Email       string `json:"email" bson:"Email"`
}

type BookingRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=255"`
	RoomID      int64     `json:"room_id" validate:"required,gt=0"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Description string    `json:"description,omitempty" validate:"omitempty,max=2000"`
}

func (b *Booking) IsCancelled() bool {
	return b.Status.Value == BookingStatusCancelled
}

// BookedByMail reports whether the booking belongs to the given mailbox, either through
// the booker's email or the directory claims string ("i:0#.f|membership|<mail>").
func (b *Booking) BookedByMail(mail string) bool {
	mail = strings.TrimSpace(mail)
	if mail == "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(b.BookedBy.Email), mail) {
		return true
	}
	return strings.EqualFold(claimsMail(b.BookedBy.Claims), mail)
}

// claimsMail returns the last "|" separated segment of a claims string.
func claimsMail(claims string) string {
	if i := strings.LastIndex(claims, "|"); i >= 0 {
		claims = claims[i+1:]
	}
	return strings.TrimSpace(claims)
}
