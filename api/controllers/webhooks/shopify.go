package webhooks

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/limited-access-backend/api/middleware"
	"github.com/angelmondragon/limited-access-backend/api/responses"
	shopifywebhook "github.com/angelmondragon/limited-access-backend/internal/webhooks/shopify"
	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
	"github.com/angelmondragon/limited-access-backend/pkg/metrics"
)

type EventDispatcher interface {
	Dispatch(ctx context.Context, event *shopifywebhook.Event) (shopifywebhook.Result, error)
}

// DeliveryGuard suppresses redelivered webhooks. It is optional.
type DeliveryGuard interface {
	CheckAndMark(ctx context.Context, deliveryID string) (bool, error)
	Delete(ctx context.Context, deliveryID string) error
}

// ShopifyWebhook handles a verified Shopify delivery. ShopifyHMAC must run first.
func ShopifyWebhook(dispatcher EventDispatcher, guard DeliveryGuard, m *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if dispatcher == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook dispatcher unavailable"))
			return
		}

		event, ok := middleware.VerifiedWebhookFromContext(ctx)
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook event not verified"))
			return
		}

		deliveryID := strings.TrimSpace(r.Header.Get(shopifywebhook.DeliveryHeader))
		if guard != nil && deliveryID != "" {
			if logg != nil {
				ctx = logg.WithField(ctx, "delivery_id", deliveryID)
			}
			seen, err := guard.CheckAndMark(ctx, deliveryID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if seen {
				m.IncVerification(string(event.Kind), metrics.OutcomeDuplicate)
				if logg != nil {
					logg.Info(ctx, "webhook.duplicate_delivery")
				}
				responses.WriteMessage(w, http.StatusOK, "Duplicate delivery ignored", nil)
				return
			}
		}

		result, err := dispatcher.Dispatch(ctx, event)
		if err != nil {
			if guard != nil && deliveryID != "" {
				if delErr := guard.Delete(ctx, deliveryID); delErr != nil && logg != nil {
					logg.Warn(logg.WithField(ctx, "release_error", delErr.Error()), "webhook.delivery_release_failed")
				}
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteMessage(w, http.StatusOK, result.Message, nil)
	}
}

// WebhookHealth is an unauthenticated liveness check for the webhook surface.
func WebhookHealth(now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteMessage(w, http.StatusOK, "Webhook endpoint is healthy", map[string]time.Time{
			"timestamp": now().UTC(),
		})
	}
}
