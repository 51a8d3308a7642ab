package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tour_booking/internal/controller/formatting"
	"github.com/Freeeeeet/tour_booking/internal/controller/keyboard"
	"github.com/Freeeeeet/tour_booking/internal/controller/state"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Callback data
const (
	CallbackDay           = "day:"            // day:2025-03-03
	CallbackBook          = "book:"           // book:123 (slot id)
	CallbackCancelBooking = "cancel_booking:" // cancel_booking:123
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Здесь можно записаться на встречу или консультацию в турагентстве.\n\n"+
			"Доступные команды:\n"+
			"/slots - Свободное время\n"+
			"/mybookings - Мои записи\n"+
			"/help - Справка",
		update.Message.From.FirstName,
	)

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcomeText, nil)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	helpText := "📚 Справка по командам:\n\n" +
		"/slots - Выбрать день и время для записи\n" +
		"/mybookings - Мои записи и их отмена\n" +
		"/cancel - Прервать текущий диалог\n" +
		"/help - Показать эту справку\n\n" +
		"Напоминание о подтверждённой записи придёт заранее в этот чат."

	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleSlots показывает дни, на которые есть свободные окна
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	days, err := h.availabilityService.ListAvailable(ctx, service.AvailabilityQuery{})
	if err != nil {
		h.logger.Error("Failed to list available slots", zap.Error(err))
		h.sendError(ctx, b, chatID, userErrorText(err))
		return
	}

	if len(days) == 0 {
		h.sendMessage(ctx, b, chatID, "😔 Свободных окон пока нет. Загляните позже.", nil)
		return
	}

	buttons := make([]models.InlineKeyboardButton, 0, len(days))
	for _, day := range days {
		text := fmt.Sprintf("%s · %d", formatting.FormatDateWithWeekday(day.Date), len(day.Slots))
		buttons = append(buttons, keyboard.Button(text, CallbackDay+day.Date.Format("2006-01-02")))
	}

	h.sendMessage(ctx, b, chatID,
		"📅 Выберите день (рядом указано число свободных окон):",
		keyboard.NewBuilder().Grid(3, buttons...).Build(),
	)
}

// HandleMyBookings показывает записи из этого чата
func (h *Handlers) HandleMyBookings(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	bookings, err := h.bookingService.ListByChat(ctx, chatID)
	if err != nil {
		h.logger.Error("Failed to list bookings", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendError(ctx, b, chatID, userErrorText(err))
		return
	}

	if len(bookings) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 У вас пока нет записей.\n\nЗаписаться: /slots", nil)
		return
	}

	for _, booking := range bookings {
		var markup models.ReplyMarkup
		if booking.Status.IsActive() {
			markup = keyboard.NewBuilder().
				Row(keyboard.IDButton("❌ Отменить запись", CallbackCancelBooking, booking.ID)).
				Build()
		}
		h.sendMessage(ctx, b, chatID, formatting.FormatBooking(booking), markup)
	}
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.State(telegramID) == state.StateNone {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.", nil)
		return
	}

	// Очищаем состояние
	h.stateManager.Clear(telegramID)

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"✅ Операция отменена.\n\nИспользуйте /help для просмотра доступных команд.", nil)
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	switch h.stateManager.State(update.Message.From.ID) {
	case state.StateBookingName:
		h.handleBookingNameStep(ctx, b, update)
	case state.StateBookingContact:
		h.handleBookingContactStep(ctx, b, update)
	}
}
