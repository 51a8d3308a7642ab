package config

import (
	"errors"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/schedule"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Environment   string `envconfig:"ENV" default:"development" validate:"oneof=development production test"`
	StoreDriver   string `envconfig:"STORE_DRIVER" default:"postgres" validate:"oneof=postgres memory"`
	DBDSN         string `envconfig:"DB_DSN" validate:"required_if=StoreDriver postgres"`
	TelegramToken string `envconfig:"TELEGRAM_TOKEN"`

	RedisAddr     string `envconfig:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587" validate:"min=1,max=65535"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" validate:"required_with=SMTPHost,omitempty,email"`

	DispatchInterval time.Duration `envconfig:"DISPATCH_INTERVAL" default:"30s" validate:"min=1s"`
	DispatchBatch    int           `envconfig:"DISPATCH_BATCH" default:"50" validate:"min=1,max=1000"`
	HorizonInterval  time.Duration `envconfig:"HORIZON_INTERVAL" default:"24h" validate:"min=1m"`
	ReminderInterval time.Duration `envconfig:"REMINDER_INTERVAL" default:"1h" validate:"min=1m"`

	// Рабочий шаблон агентства
	Timezone            string          `envconfig:"TIMEZONE" default:"Europe/Moscow" validate:"required"`
	SlotDurationMinutes int             `envconfig:"SLOT_DURATION_MINUTES" default:"60" validate:"min=5,max=720"`
	MaxBookingsPerSlot  int             `envconfig:"MAX_BOOKINGS_PER_SLOT" default:"1" validate:"min=1"`
	AdvanceBookingDays  int             `envconfig:"ADVANCE_BOOKING_DAYS" default:"30" validate:"min=0,max=365"`
	ReminderHoursBefore int             `envconfig:"REMINDER_HOURS_BEFORE" default:"24" validate:"min=0"`
	ClosedDays          WeekdaySet      `envconfig:"CLOSED_DAYS" default:"sunday"`
	Holidays            DateSet         `envconfig:"HOLIDAYS"`
	WorkStart           model.TimeOfDay `envconfig:"WORK_START" default:"09:00"`
	WorkEnd             model.TimeOfDay `envconfig:"WORK_END" default:"18:00"`
	LunchStart          model.TimeOfDay `envconfig:"LUNCH_START" default:"13:00"`
	LunchEnd            model.TimeOfDay `envconfig:"LUNCH_END" default:"14:00"`
	WeekdayHours        WeekdayHours    `envconfig:"WEEKDAY_HOURS"`
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return FromEnv()
}

// FromEnv собирает конфиг только из окружения
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Errorf("%s: failed %q check", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %w", errors.Join(msgs...))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.Schedule(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Schedule строит рабочий шаблон из настроек
func (c *Config) Schedule() (*schedule.Template, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}

	workHours := make(map[time.Weekday]schedule.Hours, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if h, ok := c.WeekdayHours[wd]; ok {
			workHours[wd] = h
			continue
		}
		workHours[wd] = schedule.Hours{Start: c.WorkStart, End: c.WorkEnd}
	}

	closed := make(map[time.Weekday]bool, len(c.ClosedDays))
	for wd := range c.ClosedDays {
		closed[wd] = true
	}
	holidays := make(map[time.Time]bool, len(c.Holidays))
	for d := range c.Holidays {
		holidays[d] = true
	}

	tpl := &schedule.Template{
		Location:     loc,
		SlotDuration: time.Duration(c.SlotDurationMinutes) * time.Minute,
		MaxBookings:  c.MaxBookingsPerSlot,
		AdvanceDays:  c.AdvanceBookingDays,
		ReminderLead: time.Duration(c.ReminderHoursBefore) * time.Hour,
		WorkHours:    workHours,
		Lunch:        schedule.Hours{Start: c.LunchStart, End: c.LunchEnd},
		ClosedDays:   closed,
		Holidays:     holidays,
	}

	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return tpl, nil
}
