package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-portal/internal/config"
	"github.com/spec-kit/ticket-portal/internal/events"
)

// NotifiedEvents are the event types forwarded to notification channels.
var NotifiedEvents = []events.EventType{
	events.EventTicketCreated,
	events.EventTicketUpdated,
	events.EventUpdateRejected,
	events.EventUserCreated,
	events.EventSessionStarted,
	events.EventSessionEnded,
}

// NotificationService forwards portal events to logs and the configured
// email and webhook stubs.
type NotificationService struct {
	logger *zap.Logger
	cfg    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger, cfg: cfg}
}

// Handle delivers one event.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("actor_id", event.Actor.UserID),
	}
	if event.TicketID != 0 {
		fields = append(fields, zap.Int64("ticket_id", event.TicketID))
	}

	switch event.Type {
	case events.EventTicketCreated, events.EventUserCreated:
		n.logger.Info("notify", append(fields, zap.Any("payload", event.Payload))...)
		n.sendEmailNotificationStub(ctx, event)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventTicketUpdated:
		n.logger.Info("notify", append(fields, zap.Any("payload", event.Payload))...)
		n.sendWebhookNotificationStub(ctx, event)
	case events.EventUpdateRejected:
		n.logger.Info("notify", append(fields, zap.Any("payload", event.Payload))...)
	default:
		n.logger.Debug("notify", fields...)
	}
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
