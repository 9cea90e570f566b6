package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/angelmondragon/limited-access-backend/api/responses"
	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
)

// WebhookPathPrefix is the namespace whose bodies are captured verbatim.
const WebhookPathPrefix = "/api/webhooks/shopify"

const defaultMaxBodyBytes int64 = 1 << 20

// RawBody captures the full request body for paths under prefix, before any
// decoding, and stores it in the request context. r.Body is replaced with a
// fresh reader over the same bytes. Bodies over maxBytes are rejected.
func RawBody(prefix string, maxBytes int64, logg *logger.Logger) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			_ = r.Body.Close()
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large").
						WithDetails(map[string]any{"limit_bytes": maxBytes}))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unable to read request body"))
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(raw))
			ctx := context.WithValue(r.Context(), ctxRawBody, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
