package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// insertNotification пишет сообщение в outbox в рамках переданной транзакции
func insertNotification(ctx context.Context, db base.DBTX, msg *model.Notification) error {
	if msg == nil {
		return nil
	}

	recipient, err := json.Marshal(msg.Recipient)
	if err != nil {
		return fmt.Errorf("encode notification recipient: %w", err)
	}
	payload, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("encode notification payload: %w", err)
	}

	if msg.Status == "" {
		msg.Status = model.NotificationStatusPending
	}

	err = db.QueryRow(ctx, `
		INSERT INTO notification_outbox (id, kind, recipient, payload, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, msg.ID, msg.Kind, recipient, payload, msg.Status).Scan(&msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}

	return nil
}

func scanNotification(row pgx.Row) (*model.Notification, error) {
	var (
		n                  model.Notification
		recipient, payload []byte
	)

	err := row.Scan(
		&n.ID,
		&n.Kind,
		&recipient,
		&payload,
		&n.Status,
		&n.Attempts,
		&n.LastError,
		&n.CreatedAt,
		&n.SentAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(recipient, &n.Recipient); err != nil {
		return nil, fmt.Errorf("decode recipient: %w", err)
	}
	if err := json.Unmarshal(payload, &n.Payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	return &n, nil
}

type OutboxRepository struct {
	*base.Repository
}

func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{Repository: base.NewRepository(pool)}
}

// ClaimPending переводит до limit pending-сообщений в processing.
// SKIP LOCKED позволяет нескольким диспетчерам разбирать очередь параллельно.
func (r *OutboxRepository) ClaimPending(ctx context.Context, limit int) ([]*model.Notification, error) {
	rows, err := r.Pool().Query(ctx, `
		UPDATE notification_outbox
		SET status = 'processing', attempts = attempts + 1
		WHERE id IN (
			SELECT id FROM notification_outbox
			WHERE status = 'pending'
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, kind, recipient, payload, status, attempts, last_error, created_at, sent_at
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("claim notifications: %w", err)
	}
	defer rows.Close()

	var claimed []*model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		claimed = append(claimed, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return claimed, nil
}

// MarkSent отмечает сообщение отправленным
func (r *OutboxRepository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	affected, err := r.ExecAffected(ctx, `
		UPDATE notification_outbox SET status = 'sent', sent_at = $2, last_error = '' WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}

// MarkFailed отмечает сообщение неотправленным, повторов нет
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	affected, err := r.ExecAffected(ctx, `
		UPDATE notification_outbox SET status = 'failed', last_error = $2 WHERE id = $1
	`, id, reason)
	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}
