package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatRefEquality(t *testing.T) {
	a := NewSeatRef(1, 2, 3)
	b := NewSeatRef(1, 2, 3)
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, NewSeatRef(2, 2, 3))
	assert.NotEqual(t, a, NewSeatRef(1, 3, 3))
	assert.NotEqual(t, a, NewSeatRef(1, 2, 4))
}

func TestSeatRefAsMapKey(t *testing.T) {
	seen := map[SeatRef]uint64{
		NewSeatRef(1, 2, 3): 10,
		NewSeatRef(1, 2, 4): 11,
	}
	assert.Equal(t, uint64(10), seen[NewSeatRef(1, 2, 3)])
	assert.Equal(t, uint64(11), seen[NewSeatRef(1, 2, 4)])

	_, ok := seen[NewSeatRef(9, 2, 3)]
	assert.False(t, ok)
}

func TestReservationSeat(t *testing.T) {
	r := Reservation{ID: 5, UserID: 7, ScreeningID: 3, RowNumber: 4, SeatNumber: 8}
	assert.Equal(t, NewSeatRef(3, 4, 8), r.Seat())
}
