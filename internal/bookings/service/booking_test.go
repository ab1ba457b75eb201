package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"roombook/internal/availability"
	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/validator"
	roomserrors "roombook/internal/rooms/errors"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/identity"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

type mockBookingRepository struct {
	createFunc              func(ctx context.Context, booking *model.Booking) error
	findByIDFunc            func(ctx context.Context, id int64) (*model.Booking, error)
	findAllFunc             func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	countFunc               func(ctx context.Context) (int64, error)
	findByBookerFunc        func(ctx context.Context, mail string) ([]*model.Booking, error)
	findStartingBetweenFunc func(ctx context.Context, from, to time.Time) ([]*model.Booking, error)
	updateStatusFunc        func(ctx context.Context, id int64, status string) error
}

func (m *mockBookingRepository) FetchBookings(ctx context.Context, q availability.Query) ([]availability.Record, error) {
	return nil, nil
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = 100
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id int64) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockBookingRepository) FindByBooker(ctx context.Context, mail string) ([]*model.Booking, error) {
	if m.findByBookerFunc != nil {
		return m.findByBookerFunc(ctx, mail)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) FindStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Booking, error) {
	if m.findStartingBetweenFunc != nil {
		return m.findStartingBetweenFunc(ctx, from, to)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil
}

type roomFinderFunc func(ctx context.Context, id int64) (*model.Room, error)

func (f roomFinderFunc) FindByID(ctx context.Context, id int64) (*model.Room, error) {
	return f(ctx, id)
}

type checkerFunc func(ctx context.Context, roomID int64, start, end time.Time) availability.Result

func (f checkerFunc) Check(ctx context.Context, roomID int64, start, end time.Time) availability.Result {
	return f(ctx, roomID, start, end)
}

type recordingPublisher struct {
	events []string
	last   model.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, event model.BookingEvent) error {
	p.events = append(p.events, eventType)
	p.last = event
	return p.err
}

var (
	activeRoom = func(ctx context.Context, id int64) (*model.Room, error) {
		return &model.Room{ID: id, Title: "Orion", IsActive: true}, nil
	}
	alwaysAvailable = func(ctx context.Context, roomID int64, start, end time.Time) availability.Result {
		return availability.Result{Verdict: availability.Available}
	}
)

type fixture struct {
	repo      *mockBookingRepository
	rooms     roomFinderFunc
	checker   checkerFunc
	publisher *recordingPublisher
	cfg       *config.Config
}

func newFixture() *fixture {
	return &fixture{
		repo:      &mockBookingRepository{},
		rooms:     activeRoom,
		checker:   alwaysAvailable,
		publisher: &recordingPublisher{},
		cfg:       &config.Config{Log: logger.Discard(), Location: time.UTC},
	}
}

func (f *fixture) service() *bookingService {
	log := logger.Discard()
	return NewBookingService(f.repo, f.rooms, f.checker, f.publisher, validator.NewBookingValidator(log), f.cfg).(*bookingService)
}

func userCtx() context.Context {
	return identity.WithIdentity(context.Background(), &identity.Identity{
		Mail: "Ada@corp.example",
		UPN:  "ada@corp.example",
		Name: "Ada Lovelace",
	})
}

func adminCtx() context.Context {
	return identity.WithIdentity(context.Background(), &identity.Identity{Mail: "facilities@corp.example", Admin: true})
}

func validRequest() *model.BookingRequest {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	return &model.BookingRequest{
		Title:     "  Design   review ",
		RoomID:    4,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
}

func TestCreate_Success(t *testing.T) {
	f := newFixture()
	var stored *model.Booking
	f.repo.createFunc = func(ctx context.Context, booking *model.Booking) error {
		booking.ID = 31
		stored = booking
		return nil
	}

	booking, err := f.service().Create(userCtx(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored != booking || booking.ID != 31 {
		t.Fatalf("expected stored booking to be returned, got %+v", booking)
	}
	if booking.Title != "Design review" {
		t.Errorf("expected sanitized title, got %q", booking.Title)
	}
	if booking.MeetingRoom.Id != 4 || booking.MeetingRoom.Value != "Orion" {
		t.Errorf("unexpected room reference %+v", booking.MeetingRoom)
	}
	if booking.Status.Value != model.BookingStatusConfirmed {
		t.Errorf("expected confirmed status, got %q", booking.Status.Value)
	}
	if booking.BookedBy.Email != "ada@corp.example" || booking.BookedBy.Claims != "i:0#.f|membership|ada@corp.example" {
		t.Errorf("unexpected booker %+v", booking.BookedBy)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0] != model.EventBookingCreated {
		t.Errorf("expected booking.created event, got %v", f.publisher.events)
	}
}

func TestCreate_VerdictMapping(t *testing.T) {
	tests := []struct {
		name     string
		result   availability.Result
		wantCode string
	}{
		{"conflict", availability.Result{Verdict: availability.Conflict, ConflictID: int64(9)}, apperrors.CodeConflict},
		{"unknown", availability.Result{Verdict: availability.Unknown, Err: errors.New("store down")}, apperrors.CodeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.checker = func(ctx context.Context, roomID int64, start, end time.Time) availability.Result {
				return tt.result
			}
			f.repo.createFunc = func(ctx context.Context, booking *model.Booking) error {
				t.Fatal("booking must not be created")
				return nil
			}

			_, err := f.service().Create(userCtx(), validRequest())
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
			if len(f.publisher.events) != 0 {
				t.Error("no event should be published")
			}
		})
	}
}

func TestCreate_Rejections(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		_, err := newFixture().service().Create(context.Background(), validRequest())
		if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
			t.Errorf("expected unauthorized, got %v", err)
		}
	})

	t.Run("invalid window", func(t *testing.T) {
		req := validRequest()
		req.EndTime = req.StartTime
		_, err := newFixture().service().Create(userCtx(), req)
		if !apperrors.HasCode(err, apperrors.CodeValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown room", func(t *testing.T) {
		f := newFixture()
		f.rooms = func(ctx context.Context, id int64) (*model.Room, error) {
			return nil, roomserrors.ErrNotFound
		}
		_, err := f.service().Create(userCtx(), validRequest())
		if !apperrors.HasCode(err, apperrors.CodeNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("inactive room", func(t *testing.T) {
		f := newFixture()
		f.rooms = func(ctx context.Context, id int64) (*model.Room, error) {
			return &model.Room{ID: id, Title: "Orion", IsActive: false}, nil
		}
		f.checker = func(ctx context.Context, roomID int64, start, end time.Time) availability.Result {
			t.Fatal("inactive rooms are rejected before the availability check")
			return availability.Result{}
		}
		_, err := f.service().Create(userCtx(), validRequest())
		if !apperrors.HasCode(err, apperrors.CodeConflict) {
			t.Errorf("expected conflict, got %v", err)
		}
	})
}

func TestCreate_PublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker unreachable")

	booking, err := f.service().Create(userCtx(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.ID == 0 {
		t.Error("expected booking to be stored")
	}
}

func TestCancel(t *testing.T) {
	owned := func() *model.Booking {
		return &model.Booking{
			ID:       5,
			Title:    "Standup",
			Status:   model.Choice{Value: model.BookingStatusConfirmed},
			BookedBy: model.Person{Email: "ada@corp.example"},
		}
	}

	t.Run("owner cancels", func(t *testing.T) {
		f := newFixture()
		f.repo.findByIDFunc = func(ctx context.Context, id int64) (*model.Booking, error) { return owned(), nil }
		var status string
		f.repo.updateStatusFunc = func(ctx context.Context, id int64, s string) error {
			status = s
			return nil
		}

		booking, err := f.service().Cancel(userCtx(), 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status != model.BookingStatusCancelled || !booking.IsCancelled() {
			t.Errorf("expected cancelled status, got %q", status)
		}
		if f.publisher.last.CancelledBy != "ada@corp.example" {
			t.Errorf("expected cancelled_by to be set, got %+v", f.publisher.last)
		}
	})

	t.Run("admin cancels someone else's booking", func(t *testing.T) {
		f := newFixture()
		f.repo.findByIDFunc = func(ctx context.Context, id int64) (*model.Booking, error) { return owned(), nil }

		if _, err := f.service().Cancel(adminCtx(), 5); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		f := newFixture()
		f.repo.findByIDFunc = func(ctx context.Context, id int64) (*model.Booking, error) { return owned(), nil }
		stranger := identity.WithIdentity(context.Background(), &identity.Identity{Mail: "eve@corp.example"})

		_, err := f.service().Cancel(stranger, 5)
		if !apperrors.HasCode(err, apperrors.CodeForbidden) {
			t.Errorf("expected forbidden, got %v", err)
		}
	})

	t.Run("mailbox contained in the owner's claims is forbidden", func(t *testing.T) {
		f := newFixture()
		f.repo.findByIDFunc = func(ctx context.Context, id int64) (*model.Booking, error) {
			b := owned()
			b.BookedBy = model.Person{Email: "bob@corp.example", Claims: "i:0#.f|membership|bob@corp.example"}
			return b, nil
		}
		suffix := identity.WithIdentity(context.Background(), &identity.Identity{Mail: "b@corp.example"})

		_, err := f.service().Cancel(suffix, 5)
		if !apperrors.HasCode(err, apperrors.CodeForbidden) {
			t.Errorf("expected forbidden, got %v", err)
		}
	})

	t.Run("already cancelled", func(t *testing.T) {
		f := newFixture()
		f.repo.findByIDFunc = func(ctx context.Context, id int64) (*model.Booking, error) {
			b := owned()
			b.Status.Value = model.BookingStatusCancelled
			return b, nil
		}

		_, err := f.service().Cancel(userCtx(), 5)
		if !apperrors.HasCode(err, apperrors.CodeConflict) {
			t.Errorf("expected conflict, got %v", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := newFixture().service().Cancel(userCtx(), 5)
		if !apperrors.HasCode(err, apperrors.CodeNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestMine_Scopes(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	bookings := []*model.Booking{
		{ID: 1, StartTime: now.Add(-48 * time.Hour), BookedBy: model.Person{Email: "ada@corp.example"}},
		{ID: 2, StartTime: now.Add(2 * time.Hour), BookedBy: model.Person{Claims: "i:0#.f|membership|ada@corp.example"}},
		{ID: 3, StartTime: now.Add(24 * time.Hour), BookedBy: model.Person{Email: "ADA@corp.example"}},
		{ID: 4, StartTime: now.Add(time.Hour), BookedBy: model.Person{Email: "grace@corp.example"}},
	}

	tests := []struct {
		scope string
		want  []int64
	}{
		{"", []int64{3, 2, 1}},
		{ScopeUpcoming, []int64{3, 2}},
		{ScopePast, []int64{1}},
	}

	for _, tt := range tests {
		t.Run("scope "+tt.scope, func(t *testing.T) {
			f := newFixture()
			var queried string
			f.repo.findByBookerFunc = func(ctx context.Context, mail string) ([]*model.Booking, error) {
				queried = mail
				return bookings, nil
			}
			svc := f.service()
			svc.now = func() time.Time { return now }

			got, err := svc.Mine(userCtx(), tt.scope)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if queried != "ada@corp.example" {
				t.Errorf("expected lower-cased mail, got %q", queried)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d bookings, got %d", len(tt.want), len(got))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("position %d: expected %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}

	t.Run("invalid scope", func(t *testing.T) {
		_, err := newFixture().service().Mine(userCtx(), "someday")
		if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})
}

func TestGetAll_AdminOnly(t *testing.T) {
	f := newFixture()
	f.repo.countFunc = func(ctx context.Context) (int64, error) { return 42, nil }
	f.repo.findAllFunc = func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
		return []*model.Booking{{ID: 1}}, nil
	}

	bookings, total, err := f.service().GetAll(adminCtx(), 10, 0)
	if err != nil || total != 42 || len(bookings) != 1 {
		t.Errorf("unexpected result %v %d %v", bookings, total, err)
	}

	if _, _, err := f.service().GetAll(userCtx(), 10, 0); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}

	f.repo.countFunc = func(ctx context.Context) (int64, error) { return 0, errors.New("boom") }
	if _, _, err := f.service().GetAll(adminCtx(), 10, 0); !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Errorf("expected internal error, got %v", err)
	}
}

func TestGetByID_OwnerOrAdmin(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id int64) (*model.Booking, error) {
		return &model.Booking{ID: id, BookedBy: model.Person{Email: "grace@corp.example"}}, nil
	}

	if _, err := f.service().GetByID(userCtx(), 3); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
	if _, err := f.service().GetByID(adminCtx(), 3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDay_GroupsByRoomInCalendarZone(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	f := newFixture()
	f.cfg.Location = zone

	var from, to time.Time
	f.repo.findStartingBetweenFunc = func(ctx context.Context, a, b time.Time) ([]*model.Booking, error) {
		from, to = a, b
		return []*model.Booking{
			{ID: 1, MeetingRoom: model.LookupRef{Id: 2, Value: "Vega"}, Status: model.Choice{Value: "Confirmed"}},
			{ID: 2, MeetingRoom: model.LookupRef{Id: 1, Value: "Orion"}, Status: model.Choice{Value: "Confirmed"}},
			{ID: 3, MeetingRoom: model.LookupRef{Id: 2, Value: "Vega"}, Status: model.Choice{Value: "Confirmed"}},
			{ID: 4, MeetingRoom: model.LookupRef{Id: 1, Value: "Orion"}, Status: model.Choice{Value: "Cancelled"}},
		}, nil
	}

	schedule, err := f.service().Day(userCtx(), "2026-03-02", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantFrom := time.Date(2026, 3, 2, 0, 0, 0, 0, zone)
	if !from.Equal(wantFrom) || !to.Equal(wantFrom.Add(24*time.Hour-time.Millisecond)) {
		t.Errorf("unexpected window %v - %v", from, to)
	}
	if schedule.Date != "2026-03-02" || schedule.Timezone != "UTC+2" {
		t.Errorf("unexpected header %+v", schedule)
	}
	if len(schedule.Rooms) != 2 || schedule.Rooms[0].RoomTitle != "Orion" {
		t.Fatalf("expected rooms sorted by title, got %+v", schedule.Rooms)
	}
	if len(schedule.Rooms[0].Bookings) != 1 || len(schedule.Rooms[1].Bookings) != 2 {
		t.Errorf("unexpected grouping %+v", schedule.Rooms)
	}

	if _, err := f.service().Day(userCtx(), "02/03/2026", false); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input for bad date, got %v", err)
	}
}

func TestAvailability(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("conflict verdict", func(t *testing.T) {
		f := newFixture()
		f.checker = func(ctx context.Context, roomID int64, s, e time.Time) availability.Result {
			return availability.Result{Verdict: availability.Conflict, ConflictID: int64(8)}
		}

		result, err := f.service().Availability(context.Background(), 4, start, start.Add(time.Hour))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Available || result.Verdict != "conflict" || result.ConflictID != int64(8) {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("unknown verdict is unavailable", func(t *testing.T) {
		f := newFixture()
		f.checker = func(ctx context.Context, roomID int64, s, e time.Time) availability.Result {
			return availability.Result{Verdict: availability.Unknown, Err: errors.New("down")}
		}

		_, err := f.service().Availability(context.Background(), 4, start, start.Add(time.Hour))
		if !apperrors.HasCode(err, apperrors.CodeUnavailable) {
			t.Errorf("expected unavailable, got %v", err)
		}
	})

	t.Run("empty window", func(t *testing.T) {
		_, err := newFixture().service().Availability(context.Background(), 4, start, start)
		if !apperrors.HasCode(err, apperrors.CodeValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}
