package model

// Cinema mirrors the `cinemas` table.
type Cinema struct {
	ID       uint64 `json:"id"`       // cinemas.id
	Name     string `json:"name"`     // cinemas.name
	Location string `json:"location"` // cinemas.location
}

// RepertoireEntry links a movie to a cinema currently playing it.
// Screenings reference a repertoire entry rather than a movie
// directly so that the same movie can run in several cinemas with
// independent schedules.
type RepertoireEntry struct {
	ID       uint64 // repertoire.id
	CinemaID uint64 // repertoire.cinema_id
	MovieID  uint64 // repertoire.movie_id
}
