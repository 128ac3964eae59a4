package model

// Category is a movie genre row from the `categories` table.
type Category struct {
	ID   uint64 `json:"id"`   // categories.id
	Name string `json:"name"` // categories.name
}

// Movie mirrors the `movies` table.  CategoryID is nullable because
// legacy rows were imported without genres.
type Movie struct {
	ID              uint64  // movies.id
	Title           string  // movies.title
	CategoryID      *uint64 // movies.category_id (nullable)
	AgeRestrictions *uint32 // movies.age_restrictions (nullable, minimum age)
	Description     *string // movies.description (nullable)
	TrailerLink     *string // movies.trailer_link (nullable)
	DurationMinutes *uint32 // movies.duration_minutes (nullable)
}
