package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tour_booking/internal/clock"
	"github.com/Freeeeeet/tour_booking/internal/model"
	"go.uber.org/zap"
)

var ErrNoChannel = errors.New("no delivery channel for recipient")

// Dispatcher разбирает outbox и отправляет сообщения через зарегистрированные каналы
type Dispatcher struct {
	outbox  Outbox
	senders []Sender
	clock   clock.Clock
	batch   int
	logger  *zap.Logger
}

func NewDispatcher(outbox Outbox, clk clock.Clock, batch int, logger *zap.Logger, senders ...Sender) *Dispatcher {
	if batch <= 0 {
		batch = 50
	}
	return &Dispatcher{
		outbox:  outbox,
		senders: senders,
		clock:   clk,
		batch:   batch,
		logger:  logger,
	}
}

// Channels имена зарегистрированных каналов
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.senders))
	for _, s := range d.senders {
		names = append(names, s.Channel())
	}
	return names
}

// DispatchPending забирает одну пачку pending-сообщений и возвращает
// количество отправленных. Неудачные помечаются failed без повторов.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	pending, err := d.outbox.ClaimPending(ctx, d.batch)
	if err != nil {
		return 0, fmt.Errorf("claim pending notifications: %w", err)
	}

	sent := 0
	for _, n := range pending {
		channel, err := d.deliver(ctx, n)
		if err != nil {
			d.logger.Warn("Notification delivery failed",
				zap.String("notification_id", n.ID.String()),
				zap.String("kind", string(n.Kind)),
				zap.Error(err),
			)
			if markErr := d.outbox.MarkFailed(ctx, n.ID, err.Error()); markErr != nil {
				d.logger.Error("Failed to mark notification failed",
					zap.String("notification_id", n.ID.String()),
					zap.Error(markErr),
				)
			}
			continue
		}

		if err := d.outbox.MarkSent(ctx, n.ID, d.clock.Now()); err != nil {
			d.logger.Error("Failed to mark notification sent",
				zap.String("notification_id", n.ID.String()),
				zap.Error(err),
			)
			continue
		}

		d.logger.Debug("Notification sent",
			zap.String("notification_id", n.ID.String()),
			zap.String("kind", string(n.Kind)),
			zap.String("channel", channel),
		)
		sent++
	}

	if len(pending) > 0 {
		d.logger.Info("Outbox batch dispatched",
			zap.Int("claimed", len(pending)),
			zap.Int("sent", sent),
		)
	}

	return sent, nil
}

func (d *Dispatcher) deliver(ctx context.Context, n *model.Notification) (string, error) {
	msg, err := Render(n)
	if err != nil {
		return "", err
	}

	for _, s := range d.senders {
		if !s.CanDeliver(n.Recipient) {
			continue
		}
		if err := s.Send(ctx, n.Recipient, msg); err != nil {
			return s.Channel(), fmt.Errorf("%s: %w", s.Channel(), err)
		}
		return s.Channel(), nil
	}

	return "", ErrNoChannel
}
