package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/referral-service/internal/config"
	"github.com/spec-kit/referral-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
// Email and webhook delivery are stubs that only log.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
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
	n.dispatcher.Subscribe(events.EventReferralCreated, n.handleReferralCreated)
	n.dispatcher.Subscribe(events.EventReferralStatusChanged, n.handleReferralStatusChanged)
	n.dispatcher.Subscribe(events.EventReferralsTimedOut, n.handleReferralsTimedOut)
	n.dispatcher.Subscribe(events.EventFirmRegistered, n.handleFirmRegistered)
}

func (n *NotificationService) handleReferralCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ReferralCreated", zap.Int64("referral_id", event.ReferralID), zap.String("event_id", event.ID))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleReferralStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ReferralStatusChanged", zap.Int64("referral_id", event.ReferralID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleReferralsTimedOut(ctx context.Context, event events.Event) error {
	n.logger.Info("ReferralsTimedOut", zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleFirmRegistered(ctx context.Context, event events.Event) error {
	n.logger.Info("FirmRegistered", zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Int64("referral_id", event.ReferralID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.Int64("referral_id", event.ReferralID),
		zap.String("event_type", string(event.Type)))
}
