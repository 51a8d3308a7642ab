package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/clock"
	"github.com/Freeeeeet/tour_booking/internal/config"
	"github.com/Freeeeeet/tour_booking/internal/controller"
	"github.com/Freeeeeet/tour_booking/internal/lock"
	"github.com/Freeeeeet/tour_booking/internal/notification"
	"github.com/Freeeeeet/tour_booking/internal/repository"
	"github.com/Freeeeeet/tour_booking/internal/repository/memory"
	"github.com/Freeeeeet/tour_booking/internal/schedule"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stores хранилища, с которыми работают сервисы
type Stores struct {
	Slots    service.SlotStore
	Bookings service.BookingStore
	Outbox   notification.Outbox
}

// App собранное приложение: хранилища, сервисы, фоновые задачи
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Template *schedule.Template
	Clock    clock.Clock

	Pool  *pgxpool.Pool
	Redis *redis.Client

	Slots        *service.SlotService
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
	Reminders    *service.ReminderService
	Dispatcher   *notification.Dispatcher
	Locker       lock.Locker

	bot *bot.Bot
}

// New подключается к хранилищам и собирает сервисы
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	tpl, err := cfg.Schedule()
	if err != nil {
		return nil, fmt.Errorf("build schedule: %w", err)
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Template: tpl,
		Clock:    clock.Real{},
	}

	stores, err := a.openStores(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := a.openLocker(ctx); err != nil {
		a.Close()
		return nil, err
	}

	senders, err := a.openSenders()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Slots = service.NewSlotService(stores.Slots, tpl, a.Clock, logger.Named("slots"))
	a.Availability = service.NewAvailabilityService(stores.Slots, tpl, a.Clock, logger.Named("availability"))
	a.Bookings = service.NewBookingService(stores.Slots, stores.Bookings, tpl, a.Clock, logger.Named("bookings"))
	a.Reminders = service.NewReminderService(stores.Bookings, tpl, a.Clock, cfg.ReminderInterval, logger.Named("reminders"))
	a.Dispatcher = notification.NewDispatcher(stores.Outbox, a.Clock, cfg.DispatchBatch, logger.Named("dispatcher"), senders...)

	logger.Info("Application assembled",
		zap.String("store", cfg.StoreDriver),
		zap.String("timezone", tpl.Location.String()),
		zap.Strings("channels", a.Dispatcher.Channels()),
	)

	return a, nil
}

func (a *App) openStores(ctx context.Context) (Stores, error) {
	if a.Config.StoreDriver == config.StoreDriverMemory {
		a.Logger.Warn("Using in-memory store, data is lost on restart")
		store := memory.New()
		return Stores{Slots: store.Slots(), Bookings: store.Bookings(), Outbox: store.Outbox()}, nil
	}

	pool, err := pgxpool.New(ctx, a.Config.DBDSN)
	if err != nil {
		return Stores{}, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return Stores{}, fmt.Errorf("ping database: %w", err)
	}
	a.Pool = pool

	return Stores{
		Slots:    repository.NewSlotRepository(pool),
		Bookings: repository.NewBookingRepository(pool),
		Outbox:   repository.NewOutboxRepository(pool),
	}, nil
}

// openLocker исключает параллельные запуски задач; с Redis и между экземплярами
func (a *App) openLocker(ctx context.Context) error {
	local := lock.NewLocal()
	if a.Config.RedisAddr == "" {
		a.Locker = local
		return nil
	}

	client, err := lock.NewRedisClient(ctx, a.Config.RedisAddr, a.Config.RedisPassword)
	if err != nil {
		return err
	}
	a.Redis = client

	// TTL с запасом больше самого долгого интервала, чтобы блокировка упавшего экземпляра истекла
	ttl := max(a.Config.ReminderInterval, a.Config.DispatchInterval, time.Minute)
	a.Locker = lock.Chain{local, lock.NewRedis(client, ttl, a.Logger.Named("lock"))}
	a.Logger.Info("Redis job lock enabled", zap.String("addr", a.Config.RedisAddr))
	return nil
}

func (a *App) openSenders() ([]notification.Sender, error) {
	var senders []notification.Sender

	if a.Config.TelegramToken != "" {
		b, err := bot.New(a.Config.TelegramToken, bot.WithSkipGetMe())
		if err != nil {
			return nil, fmt.Errorf("create telegram bot: %w", err)
		}
		a.bot = b
		senders = append(senders, notification.NewTelegramSender(b))
	}

	if a.Config.SMTPHost != "" {
		email, err := notification.NewEmailSender(notification.SMTPConfig{
			Host:     a.Config.SMTPHost,
			Port:     a.Config.SMTPPort,
			Username: a.Config.SMTPUsername,
			Password: a.Config.SMTPPassword,
			From:     a.Config.SMTPFrom,
		})
		if err != nil {
			return nil, err
		}
		senders = append(senders, email)
	}

	return senders, nil
}

// Jobs фоновые задачи сервиса
func (a *App) Jobs() []Job {
	return []Job{
		{
			Name:     "horizon",
			Interval: a.Config.HorizonInterval,
			Run: func(ctx context.Context) error {
				_, err := a.Slots.ExtendHorizon(ctx)
				return err
			},
		},
		{
			Name:     "reminders",
			Interval: a.Config.ReminderInterval,
			Run: func(ctx context.Context) error {
				_, err := a.Reminders.SendDue(ctx)
				return err
			},
		},
		{
			Name:     "dispatch",
			Interval: a.Config.DispatchInterval,
			Run: func(ctx context.Context) error {
				_, err := a.Dispatcher.DispatchPending(ctx)
				return err
			},
		},
	}
}

// Serve запускает планировщик и Telegram-бота до отмены ctx
func (a *App) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	scheduler := NewScheduler(a.Locker, a.Logger.Named("scheduler"), a.Jobs()...)
	g.Go(func() error {
		return scheduler.Run(ctx)
	})

	if a.bot != nil {
		botController := controller.NewBotController(a.bot, a.Availability, a.Bookings, a.Clock, a.Logger.Named("bot"))
		if err := botController.RegisterHandlers(ctx); err != nil {
			a.Logger.Warn("Bot commands menu not set", zap.Error(err))
		}
		g.Go(func() error {
			return botController.Start(ctx)
		})
	} else {
		a.Logger.Warn("TELEGRAM_TOKEN is not set, bot is disabled")
	}

	return g.Wait()
}

// Close освобождает соединения
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
