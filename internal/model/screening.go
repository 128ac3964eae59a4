package model

import "time"

// Translation values accepted by the screenings.translation enum.
const (
	TranslationDubbing   = "Dubbing"
	TranslationSubtitles = "Subtitles"
	TranslationVoiceOver = "Voice-over"
)

// Image format values accepted by the screenings.image_format enum.
const (
	ImageFormat2D = "2D"
	ImageFormat3D = "3D"
)

// Screening represents a scheduled showing of a repertoire movie in
// a numbered room.  StartTime doubles as the booking window cutoff:
// once it has passed, no new reservations are accepted.
//
// Fields:
//
//	ID            – primary key identifier.
//	RepertoireID  – repertoire entry (cinema + movie) being shown.
//	StartTime     – when the screening begins, stored in UTC.
//	RoomNumber    – room the screening takes place in.
//	Translation   – one of the Translation* constants.
//	ImageFormat   – one of the ImageFormat* constants.
//	TicketPrice   – price per seat in the cinema's currency.
type Screening struct {
	ID           uint64    `json:"id"`            // screenings.id
	RepertoireID uint64    `json:"repertoire_id"` // screenings.repertoire_id
	StartTime    time.Time `json:"start_time"`    // screenings.start_time
	RoomNumber   uint32    `json:"room_number"`   // screenings.room_number
	Translation  string    `json:"translation"`   // screenings.translation
	ImageFormat  string    `json:"image_format"`  // screenings.image_format
	TicketPrice  float64   `json:"ticket_price"`  // screenings.ticket_price
}

// Room describes the seating grid of a physical room.  Capacity is
// expressed as a full rectangle: RowsTotal rows of SeatsPerRow seats.
type Room struct {
	RoomNumber  uint32 `json:"room_number"`   // rooms.room_number
	RowsTotal   uint32 `json:"rows_total"`    // rooms.rows_total
	SeatsPerRow uint32 `json:"seats_per_row"` // rooms.seats_per_row
}
