// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/constants"
)

// WebhookBodyContextKey is the context key for storing raw webhook body
type WebhookBodyContextKey struct{}

// WebhookBodyCaptureMiddleware captures the raw body of POST requests to the
// Zoom webhook endpoint and stores it in the request context for signature
// validation. Bodies larger than limit bytes are acknowledged and dropped so
// Zoom does not redeliver them.
func WebhookBodyCaptureMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != constants.ZoomWebhookPath || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			if err != nil {
				slog.ErrorContext(r.Context(), "failed to read zoom webhook body",
					logging.ErrKey, err,
					"limit_bytes", limit,
				)
				w.Header().Set(constants.ContentTypeHeader, "application/json")
				w.WriteHeader(http.StatusOK)
				_ = json.NewEncoder(w).Encode(models.WebhookAck{Status: constants.StatusIgnored})
				return
			}

			// Close the original body
			_ = r.Body.Close()

			// Create a new reader with the same data for the next handler
			r.Body = io.NopCloser(bytes.NewReader(body))

			// Store the raw body in context
			ctx := context.WithValue(r.Context(), WebhookBodyContextKey{}, body)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRawBodyFromContext extracts the raw body from the context
func GetRawBodyFromContext(ctx context.Context) ([]byte, bool) {
	body, ok := ctx.Value(WebhookBodyContextKey{}).([]byte)
	return body, ok
}
