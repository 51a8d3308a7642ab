// Package memory is an in-process implementation of the booking stores.
// A single mutex stands in for the database transaction: every mutating
// method holds it for the whole check-and-write, mirroring the row locks and
// conditional updates of the Postgres repositories.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"github.com/google/uuid"
)

type slotKey struct {
	date  time.Time
	start model.TimeOfDay
}

// Store holds slots, bookings and the notification outbox.
type Store struct {
	mu sync.Mutex

	slots         map[int64]*model.Slot
	slotKeys      map[slotKey]int64
	bookings      map[int64]*model.Booking
	notifications []*model.Notification

	nextSlotID    int64
	nextBookingID int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		slots:    make(map[int64]*model.Slot),
		slotKeys: make(map[slotKey]int64),
		bookings: make(map[int64]*model.Booking),
		now:      time.Now,
	}
}

// Slots returns the slot store view.
func (s *Store) Slots() *SlotRepository { return &SlotRepository{s: s} }

// Bookings returns the booking store view.
func (s *Store) Bookings() *BookingRepository { return &BookingRepository{s: s} }

// Outbox returns the notification outbox view.
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{s: s} }

// Notifications returns a snapshot of every outbox message.
func (s *Store) Notifications() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		out = append(out, *n)
	}
	return out
}

func (s *Store) enqueue(msg *model.Notification) {
	if msg == nil {
		return
	}
	n := *msg
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.Status = model.NotificationStatusPending
	n.CreatedAt = s.now()
	s.notifications = append(s.notifications, &n)
}

func (s *Store) hasBookings(slotID int64) bool {
	for _, b := range s.bookings {
		if b.SlotID == slotID {
			return true
		}
	}
	return false
}

func copySlot(slot *model.Slot) *model.Slot {
	c := *slot
	return &c
}

func (s *Store) copyBooking(b *model.Booking) *model.Booking {
	c := *b
	if slot, ok := s.slots[b.SlotID]; ok {
		c.Slot = copySlot(slot)
	}
	return &c
}

// SlotRepository implements service.SlotStore.
type SlotRepository struct{ s *Store }

var _ service.SlotStore = (*SlotRepository)(nil)

func (r *SlotRepository) InsertBatch(_ context.Context, slots []*model.Slot) (int, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	created := 0
	for _, slot := range slots {
		key := slotKey{date: model.DateOf(slot.Date), start: slot.StartTime}
		if _, exists := s.slotKeys[key]; exists {
			continue
		}
		s.insertSlotLocked(slot)
		created++
	}
	return created, nil
}

func (r *SlotRepository) Create(_ context.Context, slot *model.Slot) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey{date: model.DateOf(slot.Date), start: slot.StartTime}
	if _, exists := s.slotKeys[key]; exists {
		return model.ErrSlotExists
	}
	s.insertSlotLocked(slot)
	return nil
}

func (s *Store) insertSlotLocked(slot *model.Slot) {
	s.nextSlotID++
	slot.ID = s.nextSlotID
	slot.Date = model.DateOf(slot.Date)
	slot.CreatedAt = s.now()
	s.slots[slot.ID] = copySlot(slot)
	s.slotKeys[slotKey{date: slot.Date, start: slot.StartTime}] = slot.ID
}

func (r *SlotRepository) GetByID(_ context.Context, id int64) (*model.Slot, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, model.ErrSlotNotFound
	}
	return copySlot(slot), nil
}

func (r *SlotRepository) ListOpen(_ context.Context, filter model.SlotFilter) ([]*model.Slot, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := model.DateOf(filter.From), model.DateOf(filter.To)

	var result []*model.Slot
	for _, slot := range s.slots {
		if !slot.IsOpen() || !slot.MatchesService(filter.ServiceID) {
			continue
		}
		if slot.Date.Before(from) || slot.Date.After(to) {
			continue
		}
		result = append(result, copySlot(slot))
	}

	slices.SortFunc(result, func(a, b *model.Slot) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.StartTime, b.StartTime)
	})

	return result, nil
}

func (r *SlotRepository) SetAvailable(_ context.Context, id int64, available bool) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return model.ErrSlotNotFound
	}
	slot.IsAvailable = available
	return nil
}

func (r *SlotRepository) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[id]
	if !ok {
		return model.ErrSlotNotFound
	}
	if s.hasBookings(id) {
		return model.ErrSlotHasBookings
	}
	delete(s.slots, id)
	delete(s.slotKeys, slotKey{date: slot.Date, start: slot.StartTime})
	return nil
}

func (r *SlotRepository) DeleteUnbooked(_ context.Context) (int, int, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted, kept := 0, 0
	for id, slot := range s.slots {
		if s.hasBookings(id) {
			kept++
			continue
		}
		delete(s.slots, id)
		delete(s.slotKeys, slotKey{date: slot.Date, start: slot.StartTime})
		deleted++
	}
	return deleted, kept, nil
}

// BookingRepository implements service.BookingStore.
type BookingRepository struct{ s *Store }

var _ service.BookingStore = (*BookingRepository)(nil)

func (r *BookingRepository) Reserve(_ context.Context, slotID int64, fn service.ReserveFunc) (*model.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[slotID]
	if !ok {
		return nil, model.ErrSlotNotFound
	}

	booking, msg, err := fn(copySlot(slot))
	if err != nil {
		return nil, err
	}

	// Условное увеличение, как UPDATE ... WHERE current_bookings < max_bookings
	if !slot.IsAvailable || slot.CurrentBookings >= slot.MaxBookings {
		return nil, model.ErrSlotFull
	}
	slot.CurrentBookings++

	now := s.now()
	s.nextBookingID++
	booking.ID = s.nextBookingID
	booking.SlotID = slotID
	booking.CreatedAt = now
	booking.UpdatedAt = now

	stored := *booking
	stored.Slot = nil
	s.bookings[booking.ID] = &stored

	booking.Slot = copySlot(slot)
	s.enqueue(msg)

	return booking, nil
}

func (r *BookingRepository) Update(_ context.Context, id int64, fn service.UpdateFunc) (*model.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bookings[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}

	working := s.copyBooking(stored)
	previous := working.Status

	msg, err := fn(working)
	if err != nil {
		return nil, err
	}

	if working.Status != previous {
		stored.Status = working.Status
		stored.CancelledAt = working.CancelledAt
		stored.UpdatedAt = s.now()

		if working.Status == model.BookingStatusCancelled && previous.IsActive() {
			if slot, ok := s.slots[stored.SlotID]; ok && slot.CurrentBookings > 0 {
				slot.CurrentBookings--
			}
		}
		s.enqueue(msg)
	}

	return s.copyBooking(stored), nil
}

func (r *BookingRepository) GetByID(_ context.Context, id int64) (*model.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	return s.copyBooking(b), nil
}

func (r *BookingRepository) ListByChat(_ context.Context, chatID int64) ([]*model.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*model.Booking
	for _, b := range s.bookings {
		if b.Requester.TelegramChatID == chatID {
			result = append(result, s.copyBooking(b))
		}
	}
	slices.SortFunc(result, func(a, b *model.Booking) int {
		return cmp.Compare(b.ID, a.ID)
	})
	return result, nil
}

func (r *BookingRepository) DueReminders(_ context.Context, from, to time.Time) ([]*model.Booking, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*model.Booking
	for _, b := range s.bookings {
		if b.Status != model.BookingStatusConfirmed || b.ReminderSentAt != nil {
			continue
		}
		slot, ok := s.slots[b.SlotID]
		if !ok {
			continue
		}
		start := slot.WallStart()
		if start.Before(from) || !start.Before(to) {
			continue
		}
		result = append(result, s.copyBooking(b))
	}
	slices.SortFunc(result, func(a, b *model.Booking) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (r *BookingRepository) ClaimReminder(_ context.Context, id int64, at time.Time, msg *model.Notification) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return false, model.ErrBookingNotFound
	}
	if b.Status != model.BookingStatusConfirmed || b.ReminderSentAt != nil {
		return false, nil
	}
	b.ReminderSentAt = &at
	s.enqueue(msg)
	return true, nil
}

// OutboxRepository implements notification.Outbox.
type OutboxRepository struct{ s *Store }

func (r *OutboxRepository) ClaimPending(_ context.Context, limit int) ([]*model.Notification, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var claimed []*model.Notification
	for _, n := range s.notifications {
		if len(claimed) >= limit {
			break
		}
		if n.Status != model.NotificationStatusPending {
			continue
		}
		n.Status = model.NotificationStatusProcessing
		n.Attempts++
		c := *n
		claimed = append(claimed, &c)
	}
	return claimed, nil
}

func (r *OutboxRepository) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.update(id, func(n *model.Notification) {
		n.Status = model.NotificationStatusSent
		n.SentAt = &at
	})
}

func (r *OutboxRepository) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	return r.update(id, func(n *model.Notification) {
		n.Status = model.NotificationStatusFailed
		n.LastError = reason
	})
}

func (r *OutboxRepository) update(id uuid.UUID, fn func(n *model.Notification)) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.ID == id {
			fn(n)
			return nil
		}
	}
	return fmt.Errorf("notification %s not found", id)
}
