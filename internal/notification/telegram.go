package notification

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MessageSender часть *bot.Bot, нужная для отправки
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TelegramSender отправляет сообщения в чат, из которого было сделано бронирование
type TelegramSender struct {
	bot MessageSender
}

func NewTelegramSender(b MessageSender) *TelegramSender {
	return &TelegramSender{bot: b}
}

func (s *TelegramSender) Channel() string { return "telegram" }

func (s *TelegramSender) CanDeliver(r model.Requester) bool {
	return r.TelegramChatID != 0
}

func (s *TelegramSender) Send(ctx context.Context, r model.Requester, msg Message) error {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: r.TelegramChatID,
		Text:   fmt.Sprintf("%s\n\n%s", msg.Subject, msg.Body),
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
