package notification

import (
	"context"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/google/uuid"
)

// Outbox очередь исходящих сообщений
type Outbox interface {
	ClaimPending(ctx context.Context, limit int) ([]*model.Notification, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// Message готовое к отправке сообщение
type Message struct {
	Subject string
	Body    string
}

// Sender канал доставки. Диспетчер перебирает каналы в порядке регистрации
// и отправляет через первый, который умеет доставить получателю.
type Sender interface {
	Channel() string
	CanDeliver(r model.Requester) bool
	Send(ctx context.Context, r model.Requester, msg Message) error
}
