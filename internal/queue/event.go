// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a booking's payment settles.
// It carries enough context for downstream consumers to log, notify or feed
// analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID   uint64   `json:"booking_id"`
	OrderRef    string   `json:"order_ref"`
	UserID      uint64   `json:"user_id"`
	ShowID      uint64   `json:"show_id"`
	TheaterID   uint64   `json:"theater_id"`
	TheaterName string   `json:"theater_name"`
	Screen      uint32   `json:"screen"`
	MovieTitle  string   `json:"movie_title"`
	StartsAt    string   `json:"starts_at"`
	EndsAt      string   `json:"ends_at"`
	SeatLabels  []string `json:"seats"`
	TotalCents  uint32   `json:"total_cents"`
	ConfirmedAt string   `json:"confirmed_at"`
}
