package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lusopay/paypay-gateway/internal/application"
)

// SubscriptionService registers the webhook callback with the processor for
// every action the reconciliation core consumes.
type SubscriptionService struct {
	processor     application.ProcessorClient
	subs          application.SubscriptionStore
	merchantNIF   string
	publicBaseURL string
	logger        *slog.Logger
}

func NewSubscriptionService(
	processor application.ProcessorClient,
	subs application.SubscriptionStore,
	merchantNIF string,
	publicBaseURL string,
	logger *slog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		processor:     processor,
		subs:          subs,
		merchantNIF:   merchantNIF,
		publicBaseURL: publicBaseURL,
		logger:        logger,
	}
}

// SubscribeDefault subscribes this service's own webhook endpoint.
func (s *SubscriptionService) SubscribeDefault(ctx context.Context) error {
	return s.SubscribeAll(ctx, s.publicBaseURL+"/paypay/webhook")
}

// SubscribeAll subscribes the callback URL to every webhook action. A
// rejected subscription surfaces the processor's message to the operator;
// a transport failure is treated as bad credentials, matching the
// processor's behavior for unauthenticated subscription calls.
func (s *SubscriptionService) SubscribeAll(ctx context.Context, callbackURL string) error {
	actions := []string{
		ActionPaymentConfirmed,
		ActionPaymentExpired,
		ActionPaymentCancelled,
	}

	for _, action := range actions {
		resp, err := s.processor.SubscribeWebhook(ctx, application.WebhookSubscriptionRequest{
			Action:      action,
			CallbackURL: callbackURL,
		})
		if err != nil {
			s.logger.Error("webhook subscription failed", "action", action, "error", err)
			return application.NewBadCredentialsError(err)
		}
		if !resp.Accepted {
			s.logger.Error("webhook subscription rejected", "action", action, "message", resp.Message)
			return &application.ServiceError{
				Code:       application.ErrCodeBadCredentials,
				Message:    resp.Message,
				HTTPStatus: http.StatusUnauthorized,
			}
		}

		sub := &application.WebhookSubscription{
			Hooked:      true,
			Action:      action,
			CallbackURL: callbackURL,
			MerchantNIF: s.merchantNIF,
			CreatedAt:   time.Now(),
		}
		if err := s.subs.Save(ctx, sub); err != nil {
			return application.NewInternalError(fmt.Errorf("save subscription for %s: %w", action, err))
		}

		s.logger.Info("webhook subscribed", "action", action, "url", callbackURL)
	}
	return nil
}
