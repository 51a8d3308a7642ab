package state

import (
	"sync"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/clock"
)

// Manager хранит диалоги бронирования по telegramID.
// Диалог, не менявшийся дольше ttl, считается брошенным.
type Manager struct {
	mu      sync.Mutex
	dialogs map[int64]*Dialog
	clock   clock.Clock
	ttl     time.Duration
}

func NewManager(clk clock.Clock, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		dialogs: make(map[int64]*Dialog),
		clock:   clk,
		ttl:     ttl,
	}
}

// StartBooking начинает диалог для слота, сбрасывая предыдущий
func (m *Manager) StartBooking(telegramID, slotID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.dialogs[telegramID] = &Dialog{
		State:     StateBookingName,
		SlotID:    slotID,
		UpdatedAt: m.clock.Now(),
	}
}

// SetName запоминает имя и переводит диалог на шаг контакта.
// false - активного диалога нет.
func (m *Manager) SetName(telegramID int64, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.activeLocked(telegramID)
	if !ok || d.State != StateBookingName {
		return false
	}
	d.Name = name
	d.State = StateBookingContact
	d.UpdatedAt = m.clock.Now()
	return true
}

// Get возвращает копию активного диалога
func (m *Manager) Get(telegramID int64) (Dialog, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.activeLocked(telegramID)
	if !ok {
		return Dialog{}, false
	}
	return *d, true
}

// State текущий шаг диалога или StateNone
func (m *Manager) State(telegramID int64) UserState {
	d, ok := m.Get(telegramID)
	if !ok {
		return StateNone
	}
	return d.State
}

// Clear завершает диалог
func (m *Manager) Clear(telegramID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.dialogs, telegramID)
}

// Sweep удаляет брошенные диалоги и возвращает их число
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, d := range m.dialogs {
		if m.expired(d) {
			delete(m.dialogs, id)
			removed++
		}
	}
	return removed
}

func (m *Manager) activeLocked(telegramID int64) (*Dialog, bool) {
	d, ok := m.dialogs[telegramID]
	if !ok {
		return nil, false
	}
	if m.expired(d) {
		delete(m.dialogs, telegramID)
		return nil, false
	}
	return d, true
}

func (m *Manager) expired(d *Dialog) bool {
	return m.clock.Now().Sub(d.UpdatedAt) > m.ttl
}
