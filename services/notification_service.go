package services

import (
	"context"

	"anneta.link/configs/configslog"

	"go.uber.org/zap"
)

// INotificationService is the outbound mail collaborator. Delivery is
// fire-and-forget from the core's point of view: failures are logged by the
// caller, never retried.
type INotificationService interface {
	SendConfirmation(ctx context.Context, donationID uint) error
	SendExternalConfirmation(ctx context.Context, donationID uint) error
	SendDedication(ctx context.Context, donationID uint) error
}

// LogNotificationService records dispatch intents in the log. The real
// delivery pipeline lives outside this repository and consumes the same
// interface.
type LogNotificationService struct{}

func NewLogNotificationService() INotificationService {
	return &LogNotificationService{}
}

func (s *LogNotificationService) SendConfirmation(ctx context.Context, donationID uint) error {
	configslog.Log.Info("confirmation email dispatched", zap.Uint("donationID", donationID))
	return nil
}

func (s *LogNotificationService) SendExternalConfirmation(ctx context.Context, donationID uint) error {
	configslog.Log.Info("external-donation confirmation email dispatched", zap.Uint("donationID", donationID))
	return nil
}

func (s *LogNotificationService) SendDedication(ctx context.Context, donationID uint) error {
	configslog.Log.Info("dedication email dispatched", zap.Uint("donationID", donationID))
	return nil
}

var _ INotificationService = (*LogNotificationService)(nil)
