package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/angelmondragon/limited-access-backend/api/responses"
	shopifywebhook "github.com/angelmondragon/limited-access-backend/internal/webhooks/shopify"
	"github.com/angelmondragon/limited-access-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
	"github.com/angelmondragon/limited-access-backend/pkg/metrics"
)

// WebhookVerifier is satisfied by *shopifywebhook.Verifier.
type WebhookVerifier interface {
	VerifyAndDecode(kind enums.WebhookKind, raw []byte, signature string) (*shopifywebhook.Event, error)
}

// ShopifyHMAC authenticates the captured raw body and attaches the decoded
// event to the request context. Requests that fail never reach next.
func ShopifyHMAC(verifier WebhookVerifier, kind enums.WebhookKind, logg *logger.Logger, m *metrics.WebhookMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithWebhookKind(ctx, string(kind))
			}

			raw, ok := RawBodyFromContext(ctx)
			if !ok {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "raw body not captured"))
				return
			}

			event, err := verifier.VerifyAndDecode(kind, raw, r.Header.Get(shopifywebhook.SignatureHeader))
			if err != nil {
				outcome := verificationOutcome(err)
				m.IncVerification(string(kind), outcome)
				rejectWebhook(ctx, logg, w, r, outcome, err)
				return
			}

			m.IncVerification(string(kind), metrics.OutcomeVerified)
			ctx = context.WithValue(ctx, ctxWebhookEvent, event)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verificationOutcome(err error) string {
	switch {
	case errors.Is(err, shopifywebhook.ErrSecretNotConfigured):
		return metrics.OutcomeMisconfigured
	case errors.Is(err, shopifywebhook.ErrMissingSignature):
		return metrics.OutcomeMissing
	case errors.Is(err, shopifywebhook.ErrInvalidSignature):
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeMalformed
}

// rejectWebhook logs signature failures as security events, without the
// secret or the expected MAC, and writes the error response.
func rejectWebhook(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, r *http.Request, outcome string, err error) {
	if logg == nil {
		responses.WriteError(ctx, nil, w, err)
		return
	}

	switch outcome {
	case metrics.OutcomeMissing, metrics.OutcomeInvalid:
		secCtx := logg.WithFields(ctx, map[string]any{
			"remote_addr": clientIP(r),
			"path":        r.URL.Path,
			"reason":      outcome,
		})
		logg.Security(secCtx, "security.webhook.signature_invalid", err)
		responses.WriteError(ctx, nil, w, err)
	default:
		responses.WriteError(ctx, logg, w, err)
	}
}
