package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/loto-fleet/internal/config"
	"github.com/spec-kit/loto-fleet/internal/events"
)

// NotificationService announces fleet events to the outside world. Announce
// is best-effort: every failure is swallowed here and never reaches the
// publisher.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventLockerStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventLockerForceOverride, n.handleForceOverride)
	n.dispatcher.Subscribe(events.EventLockerRemoved, n.handleRemoved)
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.LockerStatusChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("LockerStatusChanged",
		zap.String("unit", payload.UnitName),
		zap.String("status", string(payload.ToStatus)),
		zap.String("technician", payload.Technician))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleForceOverride(ctx context.Context, event events.Event) error {
	n.logger.Info("LockerForceOverride", zap.String("locker_id", event.LockerID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleRemoved(ctx context.Context, event events.Event) error {
	n.logger.Info("LockerRemoved", zap.String("locker_id", event.LockerID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("locker_id", event.LockerID),
		zap.String("event_type", string(event.Type)))
}
