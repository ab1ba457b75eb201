package model

import (
	"encoding/json"
	"fmt"

	"roombook/pkg/sanitizer"
)

const (
	CapacitySmall  = "small"
	CapacityMedium = "medium"
	CapacityLarge  = "large"
)

type Room struct {
	ID          int64    `json:"id" bson:"_id"`
	Title       string   `json:"title" bson:"Title" validate:"required,min=1,max=255"`
	Capacity    int      `json:"capacity" bson:"Capacity" validate:"min=0,max=1000"`
	Location    string   `json:"location,omitempty" bson:"Location,omitempty" validate:"omitempty,max=255"`
	Equipment   []string `json:"equipment" bson:"Equipment" validate:"omitempty,max=50,dive,required,max=100"`
	Description string   `json:"description,omitempty" bson:"Description,omitempty" validate:"omitempty,max=2000"`
	IsActive    bool     `json:"is_active" bson:"IsActive"`
	ColorTag    string   `json:"color_tag,omitempty" bson:"ColorTag,omitempty" validate:"omitempty,hexcolor"`
}

type RoomRequest struct {
	Title       string        `json:"title" validate:"required,min=1,max=255"`
	Capacity    int           `json:"capacity" validate:"min=0,max=1000"`
	Location    string        `json:"location,omitempty" validate:"omitempty,max=255"`
	Equipment   EquipmentList `json:"equipment,omitempty" validate:"omitempty,max=50,dive,required,max=100"`
	Description string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsActive    *bool         `json:"is_active,omitempty"`
	ColorTag    string        `json:"color_tag,omitempty" validate:"omitempty,hexcolor"`
}

type RoomUpdate struct {
	Title       *string        `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Capacity    *int           `json:"capacity,omitempty" validate:"omitempty,min=0,max=1000"`
	Location    *string        `json:"location,omitempty" validate:"omitempty,max=255"`
	Equipment   *EquipmentList `json:"equipment,omitempty" validate:"omitempty,max=50,dive,required,max=100"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsActive    *bool          `json:"is_active,omitempty"`
	ColorTag    *string        `json:"color_tag,omitempty" validate:"omitempty,hexcolor"`
}

// EquipmentList accepts either a JSON array or a single delimited string ("Projector;#Whiteboard").
type EquipmentList []string

func (e *EquipmentList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*e = sanitizer.NormalizeEquipment(list)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("equipment must be a list or a delimited string")
	}
	*e = sanitizer.SplitEquipment(raw)
	return nil
}

// CapacityBand buckets a room by size. Rooms without a capacity count as small.
func (r *Room) CapacityBand() string {
	switch {
	case r.Capacity >= 20:
		return CapacityLarge
	case r.Capacity >= 10:
		return CapacityMedium
	default:
		return CapacitySmall
	}
}

func (r *Room) Ref() LookupRef {
	return LookupRef{Id: r.ID, Value: r.Title}
}
