package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/controller/formatting"
	"github.com/Freeeeeet/tour_booking/internal/controller/keyboard"
	"github.com/Freeeeeet/tour_booking/internal/controller/state"
	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const contactSkip = "-"

// HandleCallbackQuery обрабатывает нажатия на inline кнопки
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	switch data := callback.Data; {
	case strings.HasPrefix(data, CallbackDay):
		h.handleDaySelected(ctx, b, callback)
	case strings.HasPrefix(data, CallbackBook):
		h.handleSlotSelected(ctx, b, callback)
	case strings.HasPrefix(data, CallbackCancelBooking):
		h.handleCancelBooking(ctx, b, callback)
	default:
		h.logger.Warn("Unknown callback", zap.String("data", data))
		h.answerCallback(ctx, b, callback.ID, "", false)
	}
}

func (h *Handlers) handleDaySelected(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	chatID := callback.From.ID

	date, err := time.Parse("2006-01-02", strings.TrimPrefix(callback.Data, CallbackDay))
	if err != nil {
		h.answerCallback(ctx, b, callback.ID, "❌ Некорректная дата", true)
		return
	}
	h.answerCallback(ctx, b, callback.ID, "", false)

	days, err := h.availabilityService.ListAvailable(ctx, service.AvailabilityQuery{From: date, To: date})
	if err != nil {
		h.logger.Error("Failed to list day slots", zap.Time("date", date), zap.Error(err))
		h.sendError(ctx, b, chatID, userErrorText(err))
		return
	}
	if len(days) == 0 {
		h.sendMessage(ctx, b, chatID, "😔 На этот день свободных окон не осталось. Выберите другой: /slots", nil)
		return
	}

	day := days[0]
	buttons := make([]models.InlineKeyboardButton, 0, len(day.Slots))
	for _, slot := range day.Slots {
		buttons = append(buttons, keyboard.IDButton(formatting.FormatSlotButton(slot), CallbackBook, slot.ID))
	}

	h.sendMessage(ctx, b, chatID,
		formatting.FormatDaySlots(day)+"\nВыберите время:",
		keyboard.NewBuilder().Grid(2, buttons...).Build(),
	)
}

func (h *Handlers) handleSlotSelected(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	slotID, err := parseIDFromCallback(callback.Data, CallbackBook)
	if err != nil {
		h.answerCallback(ctx, b, callback.ID, "❌ Некорректный слот", true)
		return
	}
	h.answerCallback(ctx, b, callback.ID, "", false)

	telegramID := callback.From.ID
	h.stateManager.StartBooking(telegramID, slotID)

	h.sendMessage(ctx, b, telegramID,
		"📝 Запись\n\n"+
			"Шаг 1 из 2: Как к вам обращаться?\n\n"+
			"Для отмены используйте /cancel",
		nil,
	)
}

// handleBookingNameStep обрабатывает ввод имени
func (h *Handlers) handleBookingNameStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	name := strings.TrimSpace(update.Message.Text)

	if name == "" || len([]rune(name)) > 120 {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Имя должно быть от 1 до 120 символов.\n\nПопробуйте ещё раз:")
		return
	}

	if !h.stateManager.SetName(telegramID, name) {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Диалог устарел. Начните заново: /slots")
		return
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID,
		"Шаг 2 из 2: Оставьте телефон или email для связи.\n\n"+
			"Отправьте «"+contactSkip+"», если достаточно уведомлений в этот чат.",
		nil,
	)
}

// handleBookingContactStep обрабатывает ввод контакта и создаёт бронирование
func (h *Handlers) handleBookingContactStep(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	dialog, ok := h.stateManager.Get(telegramID)
	if !ok || dialog.State != state.StateBookingContact {
		h.stateManager.Clear(telegramID)
		h.sendError(ctx, b, chatID, "❌ Диалог устарел. Начните заново: /slots")
		return
	}

	requester := parseContact(strings.TrimSpace(update.Message.Text))
	requester.Name = dialog.Name
	slotID := dialog.SlotID
	requester.TelegramChatID = chatID

	booking, err := h.bookingService.Reserve(ctx, slotID, service.ReserveRequest{Requester: requester})
	if err != nil {
		if model.IsValidation(err) {
			// Даём исправить контакт, не начиная сначала
			h.sendError(ctx, b, chatID, userErrorText(err)+"\n\nПопробуйте ещё раз:")
			return
		}
		h.stateManager.Clear(telegramID)
		h.logger.Info("Reservation rejected",
			zap.Int64("slot_id", slotID),
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
		h.sendError(ctx, b, chatID, userErrorText(err))
		return
	}

	h.stateManager.Clear(telegramID)
	h.sendMessage(ctx, b, chatID,
		fmt.Sprintf("🎉 Заявка принята!\n\n%s\n\nНомер заявки: %s\nМы подтвердим запись и пришлём уведомление.",
			formatting.FormatBooking(booking), booking.Reference),
		nil,
	)
}

func (h *Handlers) handleCancelBooking(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	chatID := callback.From.ID

	bookingID, err := parseIDFromCallback(callback.Data, CallbackCancelBooking)
	if err != nil {
		h.answerCallback(ctx, b, callback.ID, "❌ Некорректная запись", true)
		return
	}

	booking, err := h.bookingService.GetByID(ctx, bookingID)
	if err != nil || booking.Requester.TelegramChatID != chatID {
		h.answerCallback(ctx, b, callback.ID, userErrorText(model.ErrBookingNotFound), true)
		return
	}

	result, err := h.bookingService.Cancel(ctx, bookingID)
	if err != nil {
		h.logger.Error("Failed to cancel booking", zap.Int64("booking_id", bookingID), zap.Error(err))
		h.answerCallback(ctx, b, callback.ID, userErrorText(err), true)
		return
	}

	if result.AlreadyCancelled {
		h.answerCallback(ctx, b, callback.ID, "Запись уже отменена", false)
		return
	}

	h.answerCallback(ctx, b, callback.ID, "✅ Запись отменена", false)
	h.sendMessage(ctx, b, chatID, formatting.FormatBooking(result.Booking), nil)
}

// parseContact различает email и телефон; "-" означает только Telegram
func parseContact(text string) model.Requester {
	switch {
	case text == "" || text == contactSkip:
		return model.Requester{}
	case strings.Contains(text, "@"):
		return model.Requester{Email: text}
	default:
		return model.Requester{Phone: text}
	}
}
