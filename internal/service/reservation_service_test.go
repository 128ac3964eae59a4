package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzaleska/cinema-ticketing/internal/model"
	"github.com/kzaleska/cinema-ticketing/internal/repository"
)

// fakeCatalog is an in-memory ScreeningCatalog.
type fakeCatalog struct {
	screenings map[uint64]model.Screening
	err        error
}

func (f *fakeCatalog) GetByID(ctx context.Context, id uint64) (model.Screening, error) {
	if f.err != nil {
		return model.Screening{}, f.err
	}
	s, ok := f.screenings[id]
	if !ok {
		return model.Screening{}, repository.ErrNotFound
	}
	return s, nil
}

// fakeRooms is an in-memory RoomDirectory.
type fakeRooms struct {
	rooms map[uint32]model.Room
}

func (f *fakeRooms) GetByNumber(ctx context.Context, n uint32) (model.Room, error) {
	r, ok := f.rooms[n]
	if !ok {
		return model.Room{}, repository.ErrNotFound
	}
	return r, nil
}

// fakeLedger mimics the unique-key semantics of the real store: a
// mutex-guarded map keyed by SeatRef where only the first insert for a
// seat wins.  createErr, when set, simulates an ambiguous commit outcome
// and commitOnErr controls whether the insert landed before the failure.
type fakeLedger struct {
	mu          sync.Mutex
	seats       map[model.SeatRef]model.Reservation
	nextID      uint64
	createErr   error
	commitOnErr bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{seats: make(map[model.SeatRef]model.Reservation)}
}

func (f *fakeLedger) Create(ctx context.Context, res *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := res.Seat()
	if f.createErr != nil {
		if f.commitOnErr {
			if _, taken := f.seats[key]; !taken {
				f.nextID++
				committed := *res
				committed.ID = f.nextID
				committed.CreatedAt = time.Now().UTC()
				f.seats[key] = committed
			}
		}
		return f.createErr
	}
	if _, taken := f.seats[key]; taken {
		return repository.ErrSeatTaken
	}
	f.nextID++
	res.ID = f.nextID
	res.CreatedAt = time.Now().UTC()
	f.seats[key] = *res
	return nil
}

func (f *fakeLedger) GetBySeat(ctx context.Context, seat model.SeatRef) (model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.seats[seat]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return res, nil
}

func (f *fakeLedger) ListByScreening(ctx context.Context, screeningID uint64) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, res := range f.seats {
		if res.ScreeningID == screeningID {
			out = append(out, res)
		}
	}
	return out, nil
}

func newTestService(ledger *fakeLedger) *ReservationService {
	catalog := &fakeCatalog{screenings: map[uint64]model.Screening{
		1: {ID: 1, RepertoireID: 1, StartTime: time.Now().UTC().Add(2 * time.Hour), RoomNumber: 7},
	}}
	rooms := &fakeRooms{rooms: map[uint32]model.Room{
		7: {RoomNumber: 7, RowsTotal: 10, SeatsPerRow: 20},
	}}
	return NewReservationService(catalog, rooms, ledger)
}

func TestReserveSeat_Success(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	res, err := svc.ReserveSeat(context.Background(), 42, 1, 3, 5)
	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, uint64(42), res.UserID)
	assert.Equal(t, uint32(3), res.RowNumber)
	assert.Equal(t, uint32(5), res.SeatNumber)
}

func TestReserveSeat_ConcurrentSameSeat_OneWinner(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	const callers = 64
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		rejects  int
		winnerID uint64
	)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(userID uint64) {
			defer wg.Done()
			res, err := svc.ReserveSeat(context.Background(), userID, 1, 4, 4)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
				winnerID = res.UserID
			case errors.Is(err, ErrSeatAlreadyReserved):
				rejects++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(uint64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, wins, "exactly one caller must win the seat")
	assert.Equal(t, callers-1, rejects)

	committed, err := ledger.GetBySeat(context.Background(), model.NewSeatRef(1, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, winnerID, committed.UserID, "ledger must hold the winner's reservation")
}

func TestReserveSeat_DistinctSeatsAreIndependent(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for row := uint32(1); row <= 4; row++ {
		for seat := uint32(1); seat <= 5; seat++ {
			wg.Add(1)
			go func(row, seat uint32) {
				defer wg.Done()
				_, err := svc.ReserveSeat(context.Background(), uint64(row*100+seat), 1, row, seat)
				errs <- err
			}(row, seat)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err, "bookings for distinct seats must not affect each other")
	}

	taken, err := ledger.ListByScreening(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, taken, 20)
}

func TestReserveSeat_RepeatOnTakenSeatKeepsFailing(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	_, err := svc.ReserveSeat(context.Background(), 1, 1, 2, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.ReserveSeat(context.Background(), 2, 1, 2, 2)
		assert.ErrorIs(t, err, ErrSeatAlreadyReserved)
	}
}

func TestReserveSeat_InvalidSeat(t *testing.T) {
	svc := newTestService(newFakeLedger())

	cases := []struct {
		name      string
		row, seat uint32
	}{
		{"zero row", 0, 5},
		{"zero seat", 5, 0},
		{"row beyond grid", 11, 5},
		{"seat beyond grid", 5, 21},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReserveSeat(context.Background(), 1, 1, tc.row, tc.seat)
			assert.ErrorIs(t, err, ErrInvalidSeat)
		})
	}
}

func TestReserveSeat_UnknownScreening(t *testing.T) {
	svc := newTestService(newFakeLedger())
	_, err := svc.ReserveSeat(context.Background(), 1, 999, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidSeat)
}

func TestReserveSeat_ScreeningClosed(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)
	svc.now = func() time.Time { return time.Now().UTC().Add(3 * time.Hour) }

	_, err := svc.ReserveSeat(context.Background(), 1, 1, 1, 1)
	assert.ErrorIs(t, err, ErrScreeningClosed)
}

func TestReserveSeat_CatalogDown(t *testing.T) {
	catalog := &fakeCatalog{err: errors.New("connection refused")}
	rooms := &fakeRooms{rooms: map[uint32]model.Room{}}
	svc := NewReservationService(catalog, rooms, newFakeLedger())

	_, err := svc.ReserveSeat(context.Background(), 1, 1, 1, 1)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestReserveSeat_AmbiguousCommit_Recovered(t *testing.T) {
	// The insert lands but the connection dies before the driver reports
	// success.  The reconciliation read must find our own row and report
	// the booking as committed.
	ledger := newFakeLedger()
	ledger.createErr = errors.New("driver: bad connection")
	ledger.commitOnErr = true
	svc := newTestService(ledger)

	res, err := svc.ReserveSeat(context.Background(), 42, 1, 6, 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), res.UserID)
}

func TestReserveSeat_AmbiguousCommit_LostToOtherUser(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	// Someone else already holds the seat; our insert then fails with an
	// unknown outcome.  Reconciliation must report the ordinary conflict.
	_, err := svc.ReserveSeat(context.Background(), 7, 1, 8, 8)
	require.NoError(t, err)

	ledger.createErr = errors.New("driver: bad connection")
	_, err = svc.ReserveSeat(context.Background(), 42, 1, 8, 8)
	assert.ErrorIs(t, err, ErrSeatAlreadyReserved)
}

func TestReserveSeat_AmbiguousCommit_SeatStillFree(t *testing.T) {
	// The insert never landed.  The caller must see a retryable storage
	// error, not a conflict.
	ledger := newFakeLedger()
	ledger.createErr = errors.New("driver: bad connection")
	svc := newTestService(ledger)

	_, err := svc.ReserveSeat(context.Background(), 42, 1, 9, 9)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestScreeningSeats(t *testing.T) {
	ledger := newFakeLedger()
	svc := newTestService(ledger)

	_, err := svc.ReserveSeat(context.Background(), 1, 1, 1, 1)
	require.NoError(t, err)
	_, err = svc.ReserveSeat(context.Background(), 2, 1, 1, 2)
	require.NoError(t, err)

	room, taken, err := svc.ScreeningSeats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), room.RowsTotal)
	assert.Equal(t, uint32(20), room.SeatsPerRow)
	assert.Len(t, taken, 2)
}

func TestScreeningSeats_UnknownScreening(t *testing.T) {
	svc := newTestService(newFakeLedger())
	_, _, err := svc.ScreeningSeats(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
