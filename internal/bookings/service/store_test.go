package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	bookingserrors "akoben/internal/bookings/errors"
	"akoben/internal/bookings/repository"
	identitieserrors "akoben/internal/identities/errors"
	tripserrors "akoben/internal/trips/errors"
	mongotx "akoben/pkg/db/mongo"
	"akoben/pkg/model"
)

// memDB is a transactional in-memory stand-in for the trip, booking and
// identity collections. Transactions are serialized and roll back by
// restoring a snapshot taken when they start.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	trips            map[string]*model.Trip
	bookings         map[string]*model.Booking
	identities       map[string]*model.Identity
	identityBookings map[string][]string
	nextID           int

	failBookingCreate  error
	failAppendBooking  error
	occurrenceConflict int
	transactions       int
}

type memState struct {
	trips            map[string]*model.Trip
	bookings         map[string]*model.Booking
	identityBookings map[string][]string
	nextID           int
}

func newMemDB() *memDB {
	return &memDB{
		trips:            map[string]*model.Trip{},
		bookings:         map[string]*model.Booking{},
		identities:       map[string]*model.Identity{},
		identityBookings: map[string][]string{},
	}
}

func cloneTrip(t *model.Trip) *model.Trip {
	c := *t
	c.Schedule.Occurrences = make([]model.Occurrence, len(t.Schedule.Occurrences))
	for i, o := range t.Schedule.Occurrences {
		o.Participants = append([]string{}, o.Participants...)
		c.Schedule.Occurrences[i] = o
	}
	return &c
}

func cloneBooking(b *model.Booking) *model.Booking {
	c := *b
	return &c
}

func (db *memDB) state() memState {
	s := memState{
		trips:            map[string]*model.Trip{},
		bookings:         map[string]*model.Booking{},
		identityBookings: map[string][]string{},
		nextID:           db.nextID,
	}
	for k, v := range db.trips {
		s.trips[k] = cloneTrip(v)
	}
	for k, v := range db.bookings {
		s.bookings[k] = cloneBooking(v)
	}
	for k, v := range db.identityBookings {
		s.identityBookings[k] = append([]string{}, v...)
	}
	return s
}

func (db *memDB) restore(s memState) {
	db.trips = s.trips
	db.bookings = s.bookings
	db.identityBookings = s.identityBookings
	db.nextID = s.nextID
}

func (db *memDB) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	saved := db.state()
	db.transactions++
	db.mu.Unlock()

	if err := fn(ctx); err != nil {
		db.mu.Lock()
		db.restore(saved)
		db.mu.Unlock()
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

func (db *memDB) addTrip(t *model.Trip) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t.RecomputeAvailability()
	db.trips[t.ID] = cloneTrip(t)
}

func (db *memDB) trip(id string) *model.Trip {
	db.mu.Lock()
	defer db.mu.Unlock()
	return cloneTrip(db.trips[id])
}

func (db *memDB) bookingCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.bookings)
}

func (db *memDB) bookingsOf(identityID string) []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]string{}, db.identityBookings[identityID]...)
}

// memTrips implements TripStore.
type memTrips struct{ db *memDB }

func (m memTrips) FindByID(ctx context.Context, id string) (*model.Trip, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	t, ok := m.db.trips[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", tripserrors.ErrNotFound, id)
	}
	return cloneTrip(t), nil
}

func (m memTrips) SaveOccurrence(ctx context.Context, tripID string, occ *model.Occurrence, expectedParticipants int) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.occurrenceConflict > 0 {
		m.db.occurrenceConflict--
		return fmt.Errorf("%w: %s/%s", tripserrors.ErrOccurrenceChanged, tripID, occ.ID)
	}
	t, ok := m.db.trips[tripID]
	if !ok {
		return fmt.Errorf("%w: %s", tripserrors.ErrNotFound, tripID)
	}
	stored := t.FindOccurrence(occ.ID)
	if stored == nil || len(stored.Participants) != expectedParticipants {
		return fmt.Errorf("%w: %s/%s", tripserrors.ErrOccurrenceChanged, tripID, occ.ID)
	}
	stored.Participants = append([]string{}, occ.Participants...)
	stored.SlotsRemaining = occ.SlotsRemaining
	stored.IsAvailable = occ.IsAvailable
	return nil
}

// memBookings implements repository.BookingRepository.
type memBookings struct{ db *memDB }

func (m memBookings) Create(ctx context.Context, booking *model.Booking) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.failBookingCreate != nil {
		return m.db.failBookingCreate
	}
	m.db.nextID++
	booking.ID = fmt.Sprintf("%024x", m.db.nextID)
	m.db.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (m memBookings) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	b, ok := m.db.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	return cloneBooking(b), nil
}

func (m memBookings) matching(filter repository.Filter) []*model.Booking {
	var out []*model.Booking
	for _, b := range m.db.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m memBookings) FindAll(ctx context.Context, filter repository.Filter, limit int, offset int64) ([]*model.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	all := m.matching(filter)
	if int(offset) >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m memBookings) Count(ctx context.Context, filter repository.Filter) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return int64(len(m.matching(filter))), nil
}

func (m memBookings) Update(ctx context.Context, booking *model.Booking) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.bookings[booking.ID]; !ok {
		return fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, booking.ID)
	}
	m.db.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (m memBookings) SetPaymentSession(ctx context.Context, id string, reference string, authorizationURL string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	b, ok := m.db.bookings[id]
	if !ok {
		return fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	if !b.Status.Active() || b.Payment {
		return fmt.Errorf("%w: %s", bookingserrors.ErrNotPayable, id)
	}
	b.Reference = reference
	b.AuthorizationURL = authorizationURL
	return nil
}

func (m memBookings) Delete(ctx context.Context, id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.bookings[id]; !ok {
		return fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
	}
	delete(m.db.bookings, id)
	return nil
}

func (m memBookings) FindActive(ctx context.Context, identityID string, tripID string, occurrenceID string) (*model.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, b := range m.db.bookings {
		if b.IdentityID == identityID && b.TripID == tripID && b.OccurrenceID == occurrenceID && b.Status.Active() {
			return cloneBooking(b), nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (m memBookings) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, b := range m.db.bookings {
		if b.Reference == reference {
			return cloneBooking(b), nil
		}
	}
	return nil, bookingserrors.ErrReferenceNotFound
}

func (m memBookings) CountActiveByTrip(ctx context.Context, tripID string) (int64, error) {
	return m.countActive(func(b *model.Booking) bool { return b.TripID == tripID }), nil
}

func (m memBookings) CountActiveByOccurrence(ctx context.Context, tripID string, occurrenceID string) (int64, error) {
	return m.countActive(func(b *model.Booking) bool { return b.TripID == tripID && b.OccurrenceID == occurrenceID }), nil
}

func (m memBookings) countActive(match func(*model.Booking) bool) int64 {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, b := range m.db.bookings {
		if b.Status.Active() && match(b) {
			n++
		}
	}
	return n
}

func (m memBookings) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return m.db.ExecuteTransaction(ctx, fn)
}

// memIdentities implements IdentityResolver, keyed by lower-cased e-mail.
type memIdentities struct {
	db         *memDB
	resolveErr error
}

func (m *memIdentities) Resolve(ctx context.Context, input *model.IdentityInput) (*model.Identity, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(input.Email))
	for _, identity := range m.db.identities {
		if identity.Email == email {
			return identity, nil
		}
	}
	identity := &model.Identity{ID: "identity-" + email, Name: input.FullName, Email: email, Phone: input.Phone}
	m.db.identities[identity.ID] = identity
	return identity, nil
}

func (m *memIdentities) GetByID(ctx context.Context, id string) (*model.Identity, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	identity, ok := m.db.identities[id]
	if !ok {
		return nil, identitieserrors.ErrNotFound
	}
	return identity, nil
}

func (m *memIdentities) AppendBooking(ctx context.Context, identityID string, bookingID string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.failAppendBooking != nil {
		return m.db.failAppendBooking
	}
	m.db.identityBookings[identityID] = append(m.db.identityBookings[identityID], bookingID)
	return nil
}
