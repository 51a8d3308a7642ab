package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/clock"
	"github.com/Freeeeeet/tour_booking/internal/controller/handlers"
	"github.com/Freeeeeet/tour_booking/internal/controller/state"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	dialogs  *state.Manager
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	availabilityService *service.AvailabilityService,
	bookingService *service.BookingService,
	clk clock.Clock,
	logger *zap.Logger,
) *BotController {
	dialogs := state.NewManager(clk, state.DefaultTTL)

	cmdHandlers := handlers.NewHandlers(
		availabilityService,
		bookingService,
		dialogs,
		logger,
	)

	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		dialogs:  dialogs,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/slots", bot.MatchTypeExact, c.handlers.HandleSlots)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/mybookings", bot.MatchTypeExact, c.handlers.HandleMyBookings)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, c.handlers.HandleCancel)

	// Обработчик текстовых сообщений (для диалогов с состояниями)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.handlers.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "slots", Description: "📅 Свободное время"},
		{Command: "mybookings", Description: "🗂 Мои записи"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "cancel", Description: "✖️ Прервать диалог"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает бота и блокируется до отмены ctx.
// Раз в TTL удаляет брошенные диалоги бронирования.
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot")

	go func() {
		ticker := time.NewTicker(state.DefaultTTL)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := c.dialogs.Sweep(); removed > 0 {
					c.logger.Debug("Abandoned dialogs removed", zap.Int("count", removed))
				}
			}
		}
	}()

	c.bot.Start(ctx)
	return nil
}
