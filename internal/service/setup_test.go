package service_test

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/Freeeeeet/tour_booking/internal/clock"
	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/repository/memory"
	"github.com/Freeeeeet/tour_booking/internal/schedule"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var moscow = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		panic(err)
	}
	return loc
}()

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Понедельник 03.03.2025, 10:30 по Москве
var monday = time.Date(2025, 3, 3, 10, 30, 0, 0, moscow)

func newTemplate() *schedule.Template {
	nine, six := model.NewTimeOfDay(9, 0), model.NewTimeOfDay(18, 0)
	work := make(map[time.Weekday]schedule.Hours)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		work[wd] = schedule.Hours{Start: nine, End: six}
	}

	return &schedule.Template{
		Location:     moscow,
		SlotDuration: time.Hour,
		MaxBookings:  1,
		AdvanceDays:  14,
		ReminderLead: 24 * time.Hour,
		WorkHours:    work,
		Lunch:        schedule.Hours{Start: model.NewTimeOfDay(13, 0), End: model.NewTimeOfDay(14, 0)},
		ClosedDays:   map[time.Weekday]bool{time.Sunday: true},
		Holidays:     map[time.Time]bool{date(2025, 3, 8): true},
	}
}

type env struct {
	ctx          context.Context
	store        *memory.Store
	clock        *clock.Fixed
	template     *schedule.Template
	slots        *service.SlotService
	availability *service.AvailabilityService
	bookings     *service.BookingService
	reminders    *service.ReminderService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.New()
	clk := clock.NewFixed(monday)
	tpl := newTemplate()
	require.NoError(t, tpl.Validate())
	logger := zap.NewNop()

	return &env{
		ctx:          context.Background(),
		store:        store,
		clock:        clk,
		template:     tpl,
		slots:        service.NewSlotService(store.Slots(), tpl, clk, logger),
		availability: service.NewAvailabilityService(store.Slots(), tpl, clk, logger),
		bookings:     service.NewBookingService(store.Slots(), store.Bookings(), tpl, clk, logger),
		reminders:    service.NewReminderService(store.Bookings(), tpl, clk, time.Hour, logger),
	}
}

// slotAt находит открытый слот по дате и времени начала
func (e *env) slotAt(t *testing.T, day time.Time, hour int) *model.Slot {
	t.Helper()

	slots, err := e.store.Slots().ListOpen(e.ctx, model.SlotFilter{From: day, To: day})
	require.NoError(t, err)
	for _, s := range slots {
		if s.StartTime == model.NewTimeOfDay(hour, 0) {
			return s
		}
	}
	t.Fatalf("no open slot on %s at %02d:00", day.Format(time.DateOnly), hour)
	return nil
}

func (e *env) generateWeek(t *testing.T) {
	t.Helper()
	_, err := e.slots.Generate(e.ctx, date(2025, 3, 3), date(2025, 3, 9))
	require.NoError(t, err)
}

func anna() service.ReserveRequest {
	return service.ReserveRequest{
		Requester: model.Requester{Name: "Анна", Email: "anna@example.com", TelegramChatID: 1001},
	}
}

func (e *env) notificationsOf(kind model.NotificationKind) []model.Notification {
	var out []model.Notification
	for _, n := range e.store.Notifications() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
