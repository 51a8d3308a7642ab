package repository_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/clock"
	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/repository"
	"github.com/Freeeeeet/tour_booking/internal/schedule"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"github.com/Freeeeeet/tour_booking/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Интеграционные тесты запускаются только при заданном TEST_DB_DSN
func openPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.UpContext(ctx, db, "."))

	_, err = pool.Exec(ctx, `TRUNCATE notification_outbox, bookings, slots RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return pool
}

type pgEnv struct {
	slots    *repository.SlotRepository
	bookings *repository.BookingRepository
	outbox   *repository.OutboxRepository
	template *schedule.Template
	clock    *clock.Fixed
}

func newPgEnv(t *testing.T) *pgEnv {
	pool := openPool(t)

	return &pgEnv{
		slots:    repository.NewSlotRepository(pool),
		bookings: repository.NewBookingRepository(pool),
		outbox:   repository.NewOutboxRepository(pool),
		template: &schedule.Template{
			Location:     time.UTC,
			SlotDuration: time.Hour,
			MaxBookings:  1,
			AdvanceDays:  30,
			ReminderLead: 24 * time.Hour,
			WorkHours: map[time.Weekday]schedule.Hours{
				time.Monday:    {Start: model.NewTimeOfDay(9, 0), End: model.NewTimeOfDay(12, 0)},
				time.Tuesday:   {Start: model.NewTimeOfDay(9, 0), End: model.NewTimeOfDay(12, 0)},
				time.Wednesday: {Start: model.NewTimeOfDay(9, 0), End: model.NewTimeOfDay(12, 0)},
			},
		},
		clock: clock.NewFixed(time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)),
	}
}

func TestSlotRepository_InsertBatchSkipsExisting(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()
	svc := service.NewSlotService(e.slots, e.template, e.clock, zap.NewNop())

	first, err := svc.Generate(ctx, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 6, first.Created)

	second, err := svc.Generate(ctx, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, second.Created)
	assert.Equal(t, 6, second.Skipped)

	open, err := e.slots.ListOpen(ctx, model.SlotFilter{
		From: time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, open, 3)
	assert.Equal(t, model.NewTimeOfDay(9, 0), open[0].StartTime)
	assert.Equal(t, model.NewTimeOfDay(10, 0), open[0].EndTime)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), open[0].Date)
}

func TestBookingRepository_ReserveAndCancel(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()
	slots := service.NewSlotService(e.slots, e.template, e.clock, zap.NewNop())
	bookings := service.NewBookingService(e.slots, e.bookings, e.template, e.clock, zap.NewNop())

	slot, err := slots.CreateSlot(ctx, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		model.NewTimeOfDay(15, 0), model.NewTimeOfDay(16, 0), 2, nil)
	require.NoError(t, err)

	req := service.ReserveRequest{Requester: model.Requester{Name: "Анна", Email: "anna@example.com"}}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded []*model.Booking
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := bookings.Reserve(ctx, slot.ID, req)
			if err != nil {
				assert.True(t, model.IsCapacityExceeded(err), "unexpected error: %v", err)
				return
			}
			mu.Lock()
			succeeded = append(succeeded, b)
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, succeeded, 2)

	stored, err := e.slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentBookings)

	result, err := bookings.Cancel(ctx, succeeded[0].ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyCancelled)

	again, err := bookings.Cancel(ctx, succeeded[0].ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCancelled)

	stored, err = e.slots.GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentBookings)

	assert.ErrorIs(t, e.slots.Delete(ctx, slot.ID), model.ErrSlotHasBookings)

	claimed, err := e.outbox.ClaimPending(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, claimed, 3, "two created and one cancelled")
	for _, n := range claimed {
		assert.Equal(t, model.NotificationStatusProcessing, n.Status)
		assert.Equal(t, "anna@example.com", n.Recipient.Email)
		require.NoError(t, e.outbox.MarkSent(ctx, n.ID, e.clock.Now()))
	}

	claimed, err = e.outbox.ClaimPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestBookingRepository_Reminders(t *testing.T) {
	e := newPgEnv(t)
	ctx := context.Background()
	slots := service.NewSlotService(e.slots, e.template, e.clock, zap.NewNop())
	bookings := service.NewBookingService(e.slots, e.bookings, e.template, e.clock, zap.NewNop())
	reminders := service.NewReminderService(e.bookings, e.template, e.clock, time.Hour, zap.NewNop())

	slot, err := slots.CreateSlot(ctx, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		model.NewTimeOfDay(8, 30), model.NewTimeOfDay(9, 30), 1, nil)
	require.NoError(t, err)

	b, err := bookings.Reserve(ctx, slot.ID, service.ReserveRequest{
		Requester: model.Requester{Name: "Анна", TelegramChatID: 1001},
	})
	require.NoError(t, err)
	_, err = bookings.Confirm(ctx, b.ID)
	require.NoError(t, err)

	sent, err := reminders.SendDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = reminders.SendDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	got, err := e.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ReminderSentAt)
	assert.Equal(t, model.BookingStatusConfirmed, got.Status)

	list, err := e.bookings.ListByChat(ctx, 1001)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, slot.ID, list[0].Slot.ID)
}
