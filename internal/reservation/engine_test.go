package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/agendly/agendly/internal/model"
)

type fakeStore struct {
	mu       sync.Mutex
	services map[string]model.Service
	workDays map[string][]string
	offered  map[string][]model.TimeOfDay
	clients  map[string]bool
	bookings map[string]model.Booking
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		services: map[string]model.Service{},
		workDays: map[string][]string{},
		offered:  map[string][]model.TimeOfDay{},
		clients:  map[string]bool{},
		bookings: map[string]model.Booking{},
	}
}

func (f *fakeStore) GetService(_ context.Context, id string) (model.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return model.Service{}, pgx.ErrNoRows
	}
	return svc, nil
}

func (f *fakeStore) ListWorkDays(_ context.Context, serviceID string) ([]string, error) {
	return f.workDays[serviceID], nil
}

func (f *fakeStore) ListOfferedTimes(_ context.Context, serviceID string) ([]model.TimeOfDay, error) {
	return f.offered[serviceID], nil
}

func (f *fakeStore) ClientExists(_ context.Context, id string) (bool, error) {
	return f.clients[id], nil
}

func slotKey(serviceID string, date time.Time, t model.TimeOfDay) string {
	return fmt.Sprintf("%s|%s|%d", serviceID, date.Format("2006-01-02"), int(t))
}

func (f *fakeStore) ListBookedTimes(_ context.Context, serviceID string, date time.Time) ([]model.TimeOfDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.TimeOfDay
	for _, b := range f.bookings {
		if b.ServiceID == serviceID && b.Date.Equal(date) {
			out = append(out, b.Time)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateBooking(_ context.Context, b model.Booking) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := slotKey(b.ServiceID, b.Date, b.Time)
	if _, taken := f.bookings[key]; taken {
		return model.Booking{}, &pgconn.PgError{Code: "23505", ConstraintName: "bookings_service_slot_key"}
	}
	b.ID = fmt.Sprintf("bk-%d", len(f.bookings)+1)
	b.CreatedAt = time.Now()
	f.bookings[key] = b
	return b, nil
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}

func mustTime(t *testing.T, s string) model.TimeOfDay {
	t.Helper()
	tod, err := model.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("ParseTimeOfDay(%q): %v", s, err)
	}
	return tod
}

// seedCuts sets up a haircut-style service working Mondays with half-hour
// slots between 09:00 and 11:00.
func seedCuts(t *testing.T, store *fakeStore) {
	t.Helper()
	store.services["svc-1"] = model.Service{ID: "svc-1", Name: "Haircut", DurationMinutes: 30}
	store.workDays["svc-1"] = []string{"Monday"}
	store.offered["svc-1"] = []model.TimeOfDay{
		mustTime(t, "09:00:00"),
		mustTime(t, "09:30:00"),
		mustTime(t, "10:00:00"),
		mustTime(t, "10:30:00"),
		mustTime(t, "11:00:00"),
	}
	store.clients["cl-1"] = true
}

func newTestEngine(store *fakeStore, now time.Time) *Engine {
	e := NewEngine(store, store, store, DefaultLocalOffset)
	e.now = func() time.Time { return now }
	return e
}

func TestAvailableAllFree(t *testing.T) {
	store := newFakeStore()
	seedCuts(t, store)
	e := newTestEngine(store, mustDate(t, "2026-01-01"))

	monday := mustDate(t, "2026-01-26")
	free, err := e.Available(context.Background(), "svc-1", monday)
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if len(free) != 5 {
		t.Fatalf("free = %d times, want 5", len(free))
	}
	if free[0].String() != "09:00:00" || free[4].String() != "11:00:00" {
		t.Fatalf("free bounds = %s..%s", free[0], free[4])
	}
}

func TestAvailableExcludesBooked(t *testing.T) {
	store := newFakeStore()
	seedCuts(t, store)
	monday := mustDate(t, "2026-01-26")
	for _, s := range []string{"09:30:00", "10:30:00"} {
		b := model.Booking{ClientID: "cl-1", ServiceID: "svc-1", Date: monday, Time: mustTime(t, s)}
		store.bookings[slotKey("svc-1", monday, b.Time)] = b
	}
	e := newTestEngine(store, mustDate(t, "2026-01-01"))

	free, err := e.Available(context.Background(), "svc-1", monday)
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	want := []string{"09:00:00", "10:00:00", "11:00:00"}
	if len(free) != len(want) {
		t.Fatalf("free = %v, want %v", free, want)
	}
	for i, w := range want {
		if free[i].String() != w {
			t.Errorf("free[%d] = %s, want %s", i, free[i], w)
		}
	}
}

func TestAvailableNotAWorkDay(t *testing.T) {
	store := newFakeStore()
	seedCuts(t, store)
	e := newTestEngine(store, mustDate(t, "2026-01-01"))

	tuesday := mustDate(t, "2026-01-27")
	_, err := e.Available(context.Background(), "svc-1", tuesday)
	if !errors.Is(err, ErrNotAWorkDay) {
		t.Fatalf("err = %v, want ErrNotAWorkDay", err)
	}
}

func TestAvailableNoSlotsLeft(t *testing.T) {
	store := newFakeStore()
	seedCuts(t, store)
	monday := mustDate(t, "2026-01-26")
	for _, tod := range store.offered["svc-1"] {
		store.bookings[slotKey("svc-1", monday, tod)] = model.Booking{ServiceID: "svc-1", Date: monday, Time: tod}
	}
	e := newTestEngine(store, mustDate(t, "2026-01-01"))

	_, err := e.Available(context.Background(), "svc-1", monday)
	if !errors.Is(err, ErrNoSlotsAvailable) {
		t.Fatalf("err = %v, want ErrNoSlotsAvailable", err)
	}
}

func TestReserveHappyPath(t *testing.T) {
	store := newFakeStore()
	seedCuts(t, store)
	e := newTestEngine(store, mustDate(t, "2026-01-01"))

	monday := mustDate(t, "2026-01-26")
	b, err := e.Reserve(context.Background(), "cl-1", "svc-1", monday, mustTime(t, "09:30:00"))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if b.ID == "" {
		t.Error("booking ID not set")
	}
	if b.Time.String() != "09:30:00" {
		t.Errorf("booking time = %s, want 09:30:00", b.Time)
	}
}

func TestReserveCheckOrder(t *testing.T) {
	monday := mustDate(t, "2026-01-26")
	tuesday := mustDate(t, "2026-01-27")
	now := mustDate(t, "2026-01-01")

	tests := []struct {
		name     string
		seed     func(t *testing.T, store *fakeStore)
		clientID string
		svcID    string
		date     time.Time
		tod      string
		now      time.Time
		want     error
	}{
		{
			name:     "missing client",
			clientID: "", svcID: "svc-1", date: monday, tod: "09:00:00", now: now,
			want: ErrMissingFields,
		},
		{
			name:     "missing date",
			clientID: "cl-1", svcID: "svc-1", date: time.Time{}, tod: "09:00:00", now: now,
			want: ErrMissingFields,
		},
		{
			name:     "unknown client beats unknown service",
			clientID: "nope", svcID: "also-nope", date: monday, tod: "09:00:00", now: now,
			want: ErrClientNotFound,
		},
		{
			name:     "unknown service",
			clientID: "cl-1", svcID: "nope", date: monday, tod: "09:00:00", now: now,
			want: ErrServiceNotFound,
		},
		{
			name:     "past slot beats wrong weekday",
			clientID: "cl-1", svcID: "svc-1", date: mustDate(t, "2025-12-30"), tod: "09:00:00", now: now,
			want: ErrBookingInPast,
		},
		{
			name:     "wrong weekday",
			clientID: "cl-1", svcID: "svc-1", date: tuesday, tod: "09:00:00", now: now,
			want: ErrNotAWorkDay,
		},
		{
			name:     "unscheduled time",
			clientID: "cl-1", svcID: "svc-1", date: monday, tod: "09:15:00", now: now,
			want: ErrNotAnOfferedTime,
		},
		{
			name: "taken slot",
			seed: func(t *testing.T, store *fakeStore) {
				tod := mustTime(t, "09:00:00")
				store.bookings[slotKey("svc-1", monday, tod)] = model.Booking{ServiceID: "svc-1", Date: monday, Time: tod}
			},
			clientID: "cl-1", svcID: "svc-1", date: monday, tod: "09:00:00", now: now,
			want: ErrSlotTaken,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			seedCuts(t, store)
			if tc.seed != nil {
				tc.seed(t, store)
			}
			e := newTestEngine(store, tc.now)
			_, err := e.Reserve(context.Background(), tc.clientID, tc.svcID, tc.date, mustTime(t, tc.tod))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestReservePastUsesLocalOffset(t *testing.T) {
	store := newFakeStore()
	seedCuts(t, store)
	monday := mustDate(t, "2026-01-26")

	// Server clock sits at 10:30 UTC on the booking day. A 09:00 slot is
	// gone, but the offset keeps an 08:00 slot bookable.
	now := monday.Add(10*time.Hour + 30*time.Minute)

	e := newTestEngine(store, now)
	if _, err := e.Reserve(context.Background(), "cl-1", "svc-1", monday, mustTime(t, "09:00:00")); err != nil {
		t.Fatalf("09:00 with offset: %v", err)
	}

	e = newTestEngine(store, now.Add(3 * time.Hour))
	_, err := e.Reserve(context.Background(), "cl-1", "svc-1", monday, mustTime(t, "10:00:00"))
	if !errors.Is(err, ErrBookingInPast) {
		t.Fatalf("err = %v, want ErrBookingInPast", err)
	}
}

func TestReserveInsertConflictMapsToSlotTaken(t *testing.T) {
	store := newFakeStore()
	seedCuts(t, store)
	monday := mustDate(t, "2026-01-26")
	e := newTestEngine(store, mustDate(t, "2026-01-01"))

	if _, err := e.Reserve(context.Background(), "cl-1", "svc-1", monday, mustTime(t, "10:00:00")); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	// Bypass the read-then-check by inserting directly.
	_, err := store.CreateBooking(context.Background(), model.Booking{
		ClientID: "cl-1", ServiceID: "svc-1", Date: monday, Time: mustTime(t, "10:00:00"),
	})
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("direct insert err = %v, want pg unique violation", err)
	}
}

func TestReserveConcurrentSingleWinner(t *testing.T) {
	store := newFakeStore()
	seedCuts(t, store)
	monday := mustDate(t, "2026-01-26")
	tod := mustTime(t, "09:00:00")
	e := newTestEngine(store, mustDate(t, "2026-01-01"))

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.Reserve(context.Background(), "cl-1", "svc-1", monday, tod)
		}()
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotTaken):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	if conflicts != racers-1 {
		t.Fatalf("conflicts = %d, want %d", conflicts, racers-1)
	}
	if len(store.bookings) != 1 {
		t.Fatalf("stored bookings = %d, want 1", len(store.bookings))
	}
}
