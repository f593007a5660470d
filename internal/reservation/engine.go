package reservation

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/agendly/agendly/internal/availability"
	"github.com/agendly/agendly/internal/model"
	"github.com/agendly/agendly/internal/schedule"
	"github.com/agendly/agendly/internal/storage"
)

// ServiceStore is the slice of the service repository the engine needs.
type ServiceStore interface {
	GetService(ctx context.Context, id string) (model.Service, error)
	ListWorkDays(ctx context.Context, serviceID string) ([]string, error)
	ListOfferedTimes(ctx context.Context, serviceID string) ([]model.TimeOfDay, error)
}

// ClientStore reports whether the booking client exists.
type ClientStore interface {
	ClientExists(ctx context.Context, id string) (bool, error)
}

// BookingStore reads and writes bookings. CreateBooking must enforce the
// one-booking-per-slot rule atomically; under a race the loser surfaces a
// conflict error recognized by storage.IsConflict.
type BookingStore interface {
	ListBookedTimes(ctx context.Context, serviceID string, date time.Time) ([]model.TimeOfDay, error)
	CreateBooking(ctx context.Context, b model.Booking) (model.Booking, error)
}

// DefaultLocalOffset shifts a requested slot before comparing it against
// the wall clock. Requests carry local civil time with no zone, so the
// offset lines them up with the server clock.
const DefaultLocalOffset = 3 * time.Hour

// Engine validates and commits reservations against the schedule.
type Engine struct {
	services ServiceStore
	clients  ClientStore
	bookings BookingStore

	localOffset time.Duration
	now         func() time.Time
}

func NewEngine(services ServiceStore, clients ClientStore, bookings BookingStore, localOffset time.Duration) *Engine {
	return &Engine{
		services:    services,
		clients:     clients,
		bookings:    bookings,
		localOffset: localOffset,
		now:         time.Now,
	}
}

// Available returns the offered times for serviceID on date that are not
// already booked, sorted ascending. It fails with ErrNotAWorkDay when the
// service does not work that weekday and ErrNoSlotsAvailable when every
// offered time is taken.
func (e *Engine) Available(ctx context.Context, serviceID string, date time.Time) ([]model.TimeOfDay, error) {
	workDays, err := e.services.ListWorkDays(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list work days: %w", err)
	}
	weekday := schedule.WeekdayOf(date)
	if !slices.Contains(workDays, weekday) {
		return nil, fmt.Errorf("%w: %s", ErrNotAWorkDay, weekday)
	}

	offered, err := e.services.ListOfferedTimes(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("list offered times: %w", err)
	}
	booked, err := e.bookings.ListBookedTimes(ctx, serviceID, date)
	if err != nil {
		return nil, fmt.Errorf("list booked times: %w", err)
	}

	free := availability.Free(offered, booked)
	if len(free) == 0 {
		return nil, ErrNoSlotsAvailable
	}
	return free, nil
}

// Reserve commits a booking after running the precondition checks in a
// fixed order: field presence, client existence, service existence, the
// past-slot check, the work-day check, the offered-time check and finally
// the free-slot check. The first failing check decides the error even when
// later checks would also fail.
func (e *Engine) Reserve(ctx context.Context, clientID, serviceID string, date time.Time, t model.TimeOfDay) (model.Booking, error) {
	if clientID == "" || serviceID == "" || date.IsZero() || !t.Valid() {
		return model.Booking{}, ErrMissingFields
	}

	ok, err := e.clients.ClientExists(ctx, clientID)
	if err != nil {
		return model.Booking{}, fmt.Errorf("check client: %w", err)
	}
	if !ok {
		return model.Booking{}, ErrClientNotFound
	}

	if _, err := e.services.GetService(ctx, serviceID); err != nil {
		if storage.IsNotFound(err) {
			return model.Booking{}, ErrServiceNotFound
		}
		return model.Booking{}, fmt.Errorf("get service: %w", err)
	}

	slotAt := date.Add(time.Duration(t) * time.Minute)
	if slotAt.Add(e.localOffset).Before(e.now()) {
		return model.Booking{}, ErrBookingInPast
	}

	workDays, err := e.services.ListWorkDays(ctx, serviceID)
	if err != nil {
		return model.Booking{}, fmt.Errorf("list work days: %w", err)
	}
	weekday := schedule.WeekdayOf(date)
	if !slices.Contains(workDays, weekday) {
		return model.Booking{}, fmt.Errorf("%w: %s", ErrNotAWorkDay, weekday)
	}

	offered, err := e.services.ListOfferedTimes(ctx, serviceID)
	if err != nil {
		return model.Booking{}, fmt.Errorf("list offered times: %w", err)
	}
	if !slices.Contains(offered, t) {
		return model.Booking{}, ErrNotAnOfferedTime
	}

	booked, err := e.bookings.ListBookedTimes(ctx, serviceID, date)
	if err != nil {
		return model.Booking{}, fmt.Errorf("list booked times: %w", err)
	}
	if slices.Contains(booked, t) {
		return model.Booking{}, ErrSlotTaken
	}

	created, err := e.bookings.CreateBooking(ctx, model.Booking{
		ClientID:  clientID,
		ServiceID: serviceID,
		Date:      date,
		Time:      t,
	})
	if err != nil {
		// Another request may have taken the slot between the read above
		// and the insert. The unique index is the authority.
		if storage.IsConflict(err) {
			return model.Booking{}, ErrSlotTaken
		}
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	return created, nil
}
