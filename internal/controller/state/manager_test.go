package state

import (
	"testing"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/clock"
	"github.com/stretchr/testify/assert"
)

func TestManager_BookingDialog(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC))
	sm := NewManager(clk, 0)
	const user int64 = 100

	assert.Equal(t, StateNone, sm.State(user))
	assert.False(t, sm.SetName(user, "Анна"), "no dialog yet")

	sm.StartBooking(user, 42)
	assert.Equal(t, StateBookingName, sm.State(user))

	assert.True(t, sm.SetName(user, "Анна"))
	d, ok := sm.Get(user)
	assert.True(t, ok)
	assert.Equal(t, StateBookingContact, d.State)
	assert.Equal(t, int64(42), d.SlotID)
	assert.Equal(t, "Анна", d.Name)

	assert.False(t, sm.SetName(user, "Пётр"), "name step is already passed")

	// Новый выбор слота начинает диалог заново
	sm.StartBooking(user, 7)
	d, _ = sm.Get(user)
	assert.Equal(t, int64(7), d.SlotID)
	assert.Empty(t, d.Name)

	sm.Clear(user)
	assert.Equal(t, StateNone, sm.State(user))
}

func TestManager_Expiry(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC))
	sm := NewManager(clk, 10*time.Minute)

	sm.StartBooking(1, 11)
	sm.StartBooking(2, 22)

	clk.Advance(6 * time.Minute)
	assert.True(t, sm.SetName(2, "Анна"), "update refreshes the dialog")

	clk.Advance(6 * time.Minute)
	_, ok := sm.Get(1)
	assert.False(t, ok, "dialog 1 expired")
	assert.Equal(t, StateBookingContact, sm.State(2))

	sm.StartBooking(3, 33)
	clk.Advance(11 * time.Minute)
	assert.Equal(t, 2, sm.Sweep())
	assert.Zero(t, sm.Sweep())
}
