package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// answerCallback отвечает на callback query
func (h *Handlers) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string, alert bool) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		h.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}

// parseIDFromCallback извлекает ID из callback data
// Например: "book:123" -> 123
func parseIDFromCallback(data, prefix string) (int64, error) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return 0, fmt.Errorf("invalid callback data %q", data)
	}
	return strconv.ParseInt(raw, 10, 64)
}

// userErrorText переводит ошибку ядра в сообщение пользователю
func userErrorText(err error) string {
	switch {
	case errors.Is(err, model.ErrSlotFull):
		return "😔 На это время мест больше нет. Выберите другое окно: /slots"
	case errors.Is(err, model.ErrSlotInPast):
		return "⌛ Это время уже прошло. Выберите другое окно: /slots"
	case errors.Is(err, model.ErrSlotUnavailable):
		return "🚫 Это окно закрыто для записи. Выберите другое: /slots"
	case errors.Is(err, model.ErrSlotNotFound):
		return "❓ Окно не найдено. Посмотрите актуальное расписание: /slots"
	case errors.Is(err, model.ErrBookingNotFound):
		return "❓ Запись не найдена."
	case errors.Is(err, model.ErrInvalidTransition):
		return "🚫 Эту запись уже нельзя изменить."
	case model.IsValidation(err):
		return "❌ Проверьте введённые данные: " + strings.TrimPrefix(err.Error(), model.ErrValidation.Error()+": ")
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}
