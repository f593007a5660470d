package model

import "time"

// Service is a bookable offering. Duration drives work-schedule generation;
// ReservationPeriod is a free-form descriptor of how far ahead clients may
// book and is stored but not enforced.
type Service struct {
	ID                string
	Name              string
	DurationMinutes   int
	Price             float64
	ReservationPeriod string
	CreatedAt         time.Time
}

// Booking occupies exactly one (service, date, time) slot. Date carries a
// calendar day at midnight UTC.
type Booking struct {
	ID        string
	ClientID  string
	ServiceID string
	Date      time.Time
	Time      TimeOfDay
	CreatedAt time.Time
}

type Client struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	CreatedAt    time.Time
}

type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
