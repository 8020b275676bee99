// Package notifier доставляет уведомления о сбросе пароля во внешний канал.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/tourbooking/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/tourbooking/internal/models"
)

// AMQPNotifier публикует уведомления в exchange RabbitMQ.
// Письмо формирует и отправляет внешний потребитель очереди.
type AMQPNotifier struct {
	ch         rabbitmq.Publisher
	exchange   string
	routingKey string
	log        *slog.Logger
}

// NewAMQP создаёт AMQPNotifier.
func NewAMQP(ch rabbitmq.Publisher, exchange, routingKey string, log *slog.Logger) *AMQPNotifier {
	return &AMQPNotifier{ch: ch, exchange: exchange, routingKey: routingKey, log: log}
}

// NotifyPasswordReset публикует ссылку сброса пароля.
func (n *AMQPNotifier) NotifyPasswordReset(ctx context.Context, notice models.PasswordResetNotice) error {
	const op = "notifier.NotifyPasswordReset"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := rabbitmq.PublishMessage(n.ch, n.exchange, n.routingKey, notice); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n.log.Debug("password reset notice published",
		slog.String("op", op),
		slog.String("routing_key", n.routingKey),
	)
	return nil
}

// LogNotifier только пишет уведомление в лог. Используется, когда брокер отключён.
type LogNotifier struct {
	log *slog.Logger
}

// NewLog создаёт LogNotifier.
func NewLog(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// NotifyPasswordReset логирует адрес и срок действия ссылки; саму ссылку не пишет.
func (n *LogNotifier) NotifyPasswordReset(_ context.Context, notice models.PasswordResetNotice) error {
	n.log.Info("password reset requested",
		slog.String("op", "notifier.NotifyPasswordReset"),
		slog.String("email", notice.Email),
		slog.Time("expires_at", notice.ExpiresAt),
	)
	return nil
}
