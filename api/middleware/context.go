package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/limited-access-backend/api/responses"
	shopifywebhook "github.com/angelmondragon/limited-access-backend/internal/webhooks/shopify"
)

type contextKey string

const (
	ctxRawBody      contextKey = "raw_body"
	ctxWebhookEvent contextKey = "webhook_event"
	ctxAdminSubject contextKey = "admin_subject"
)

// RawBodyFromContext returns the exact bytes captured by RawBody.
func RawBodyFromContext(ctx context.Context) ([]byte, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(ctxRawBody).([]byte)
	return raw, ok
}

// VerifiedWebhookFromContext returns the event attached by ShopifyHMAC. The
// boolean is true only for requests whose signature was verified.
func VerifiedWebhookFromContext(ctx context.Context) (*shopifywebhook.Event, bool) {
	if ctx == nil {
		return nil, false
	}
	event, ok := ctx.Value(ctxWebhookEvent).(*shopifywebhook.Event)
	return event, ok && event != nil
}

func AdminSubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdminSubject).(string); ok {
		return v
	}
	return ""
}

// Debug exposes internal error causes in responses when enabled.
func Debug(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(responses.WithDebug(r.Context())))
		})
	}
}
