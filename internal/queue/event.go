// Package queue defines message payloads exchanged over the message broker
// and the background consumers that process them.
package queue

// ReservationConfirmedEvent is published when a seat reservation commits.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID uint64  `json:"reservation_id"`
	UserID        uint64  `json:"user_id"`
	ScreeningID   uint64  `json:"screening_id"`
	RowNumber     uint32  `json:"row_number"`
	SeatNumber    uint32  `json:"seat_number"`
	MovieTitle    string  `json:"movie_title"`
	CinemaName    string  `json:"cinema_name"`
	RoomNumber    uint32  `json:"room_number"`
	StartTime     string  `json:"start_time"`
	TicketPrice   float64 `json:"ticket_price"`
	ConfirmedAt   string  `json:"confirmed_at"`
}

// PasswordResetRequestedEvent is published when a user asks for a
// password reset email.  Delivery is best effort; the mailer consumer
// writes the message to the outbox log.
type PasswordResetRequestedEvent struct {
	Email       string `json:"email"`
	ResetLink   string `json:"reset_link"`
	RequestedAt string `json:"requested_at"`
}
