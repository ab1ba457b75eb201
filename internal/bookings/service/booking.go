package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"roombook/internal/availability"
	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/validator"
	roomserrors "roombook/internal/rooms/errors"
	"roombook/pkg/config"
	mongodb "roombook/pkg/db/mongo"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/identity"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"
)

const (
	ScopeAll      = "all"
	ScopeUpcoming = "upcoming"
	ScopePast     = "past"
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Mine(ctx context.Context, scope string) ([]*model.Booking, error)
	Cancel(ctx context.Context, id int64) (*model.Booking, error)
	Day(ctx context.Context, date string, includeCancelled bool) (*model.DaySchedule, error)
	Availability(ctx context.Context, roomID int64, start, end time.Time) (*model.Availability, error)
}

// RoomFinder is satisfied by the rooms repository.
type RoomFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Room, error)
}

type AvailabilityChecker interface {
	Check(ctx context.Context, roomID int64, start, end time.Time) availability.Result
}

// Publisher announces booking changes to other services.
type Publisher interface {
	Publish(ctx context.Context, eventType string, event model.BookingEvent) error
}

type bookingService struct {
	repo      repository.BookingRepository
	rooms     RoomFinder
	checker   AvailabilityChecker
	publisher Publisher
	validator *validator.BookingValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	rooms RoomFinder,
	checker AvailabilityChecker,
	publisher Publisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		rooms:     rooms,
		checker:   checker,
		publisher: publisher,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	s.sanitize(req)
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "room_id", req.RoomID, "error", err)
		return nil, apperrors.Validation("Invalid booking input", map[string]any{"error": err.Error()})
	}

	room, err := s.findRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, apperrors.Conflict("Room is not available for booking")
	}

	// Check and insert are not atomic; see the availability package docs.
	if err := s.ensureAvailable(ctx, req.RoomID, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		Title:       req.Title,
		MeetingRoom: room.Ref(),
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Status:      model.Choice{Value: model.BookingStatusConfirmed},
		BookedBy: model.Person{
			Claims:      caller.Claims(),
			DisplayName: caller.Name,
			Email:       caller.Email(),
		},
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "room_id", req.RoomID, "error", err)
		return nil, s.storeError("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"room_id", booking.MeetingRoom.Id,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)

	s.publish(ctx, model.EventBookingCreated, model.NewBookingEvent(booking))
	return booking, nil
}

func (s *bookingService) ensureAvailable(ctx context.Context, roomID int64, start, end time.Time) error {
	result := s.checker.Check(ctx, roomID, start, end)
	switch result.Verdict {
	case availability.Available:
		return nil
	case availability.Conflict:
		return apperrors.Conflict(bookingserrors.ErrTimeConflict.Error()).
			WithDetails(map[string]any{"conflict_id": result.ConflictID})
	default:
		return apperrors.Unavailable("Availability check", result.Err)
	}
}

func (s *bookingService) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Admin && !booking.BookedByMail(caller.Email()) {
		return nil, apperrors.Forbidden("You can only view your own bookings")
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	if _, err := identity.RequireAdmin(ctx); err != nil {
		return nil, 0, err
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = s.storeError("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = s.storeError("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) Mine(ctx context.Context, scope string) ([]*model.Booking, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	if scope == "" {
		scope = ScopeAll
	}
	if scope != ScopeAll && scope != ScopeUpcoming && scope != ScopePast {
		return nil, apperrors.InvalidInput("scope must be one of: all, upcoming, past")
	}

	mail := caller.Email()
	if mail == "" {
		return []*model.Booking{}, nil
	}

	bookings, err := s.repo.FindByBooker(ctx, mail)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings for booker", "mail", mail, "error", err)
		return nil, s.storeError("Failed to retrieve bookings", err)
	}

	now := s.now()
	mine := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		// The store match is a superset; keep only rows that really name the caller.
		if !b.BookedByMail(mail) {
			continue
		}
		switch scope {
		case ScopeUpcoming:
			if !b.StartTime.After(now) {
				continue
			}
		case ScopePast:
			if b.StartTime.After(now) {
				continue
			}
		}
		mine = append(mine, b)
	}

	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].StartTime.After(mine[j].StartTime)
	})
	return mine, nil
}

func (s *bookingService) Cancel(ctx context.Context, id int64) (*model.Booking, error) {
	caller, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Admin && !booking.BookedByMail(caller.Email()) {
		return nil, apperrors.Forbidden("You can only cancel your own bookings")
	}
	if booking.IsCancelled() {
		return nil, apperrors.Conflict(bookingserrors.ErrAlreadyCancelled.Error())
	}

	if err := s.repo.UpdateStatus(ctx, id, model.BookingStatusCancelled); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, s.storeError("Failed to cancel booking", err)
	}
	booking.Status = model.Choice{Value: model.BookingStatusCancelled}

	s.cfg.Log.Info("Booking cancelled", "id", id, "by", caller.Email())

	event := model.NewBookingEvent(booking)
	event.CancelledBy = caller.Email()
	s.publish(ctx, model.EventBookingCancelled, event)
	return booking, nil
}

// Day lists the bookings starting on date in the calendar timezone, grouped by room.
func (s *bookingService) Day(ctx context.Context, date string, includeCancelled bool) (*model.DaySchedule, error) {
	if _, err := identity.Require(ctx); err != nil {
		return nil, err
	}

	loc := s.location()
	day := s.now().In(loc)
	if date != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, date, loc)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid date parameter, expected YYYY-MM-DD: " + date)
		}
		day = parsed
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, 1).Add(-time.Millisecond)

	bookings, err := s.repo.FindStartingBetween(ctx, from, to)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings for day", "date", from.Format(time.DateOnly), "error", err)
		return nil, s.storeError("Failed to retrieve bookings", err)
	}

	schedule := &model.DaySchedule{
		Date:     from.Format(time.DateOnly),
		Timezone: loc.String(),
		Rooms:    []model.RoomSchedule{},
	}
	index := map[int64]int{}
	for _, b := range bookings {
		if b.IsCancelled() && !includeCancelled {
			continue
		}
		i, ok := index[b.MeetingRoom.Id]
		if !ok {
			i = len(schedule.Rooms)
			index[b.MeetingRoom.Id] = i
			schedule.Rooms = append(schedule.Rooms, model.RoomSchedule{
				RoomID:    b.MeetingRoom.Id,
				RoomTitle: b.MeetingRoom.Value,
			})
		}
		schedule.Rooms[i].Bookings = append(schedule.Rooms[i].Bookings, b)
	}

	sort.SliceStable(schedule.Rooms, func(i, j int) bool {
		return schedule.Rooms[i].RoomTitle < schedule.Rooms[j].RoomTitle
	})
	return schedule, nil
}

func (s *bookingService) Availability(ctx context.Context, roomID int64, start, end time.Time) (*model.Availability, error) {
	if err := s.validator.ValidateWindow(start, end); err != nil {
		return nil, apperrors.Validation("Invalid time window", map[string]any{"error": err.Error()})
	}
	if _, err := s.findRoom(ctx, roomID); err != nil {
		return nil, err
	}

	result := s.checker.Check(ctx, roomID, start, end)
	if result.Verdict == availability.Unknown {
		return nil, apperrors.Unavailable("Availability check", result.Err)
	}

	return &model.Availability{
		RoomID:     roomID,
		StartTime:  start,
		EndTime:    end,
		Available:  result.Available(),
		Verdict:    result.Verdict.String(),
		ConflictID: result.ConflictID,
	}, nil
}

func (s *bookingService) findRoom(ctx context.Context, id int64) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, roomserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Room", id)
		case errors.Is(err, roomserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid room ID")
		}
		s.cfg.Log.Error("Failed to retrieve room", "room_id", id, "error", err)
		return nil, s.storeError("Failed to retrieve room", err)
	}
	return room, nil
}

func (s *bookingService) findBooking(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Booking", id)
		case errors.Is(err, bookingserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid booking ID")
		}
		s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, s.storeError("Failed to retrieve booking", err)
	}
	return booking, nil
}

// publish never fails the request; the booking is already stored.
func (s *bookingService) publish(ctx context.Context, eventType string, event model.BookingEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

func (s *bookingService) storeError(message string, err error) error {
	if mongodb.IsUnavailable(err) {
		return apperrors.Unavailable("Booking store", err)
	}
	return apperrors.Internal(message, err)
}

func (s *bookingService) location() *time.Location {
	if s.cfg.Location != nil {
		return s.cfg.Location
	}
	return time.UTC
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.Title = sanitizer.NormalizeTitle(req.Title)
	req.Description = sanitizer.NormalizeDescription(req.Description)
}
