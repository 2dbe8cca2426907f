// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/infrastructure/zoom/webhook"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/constants"
)

// SignatureValidator checks the x-zm-signature header of a webhook request.
type SignatureValidator interface {
	ValidateSignature(body []byte, signature, timestamp string) error
}

// WebhookProcessor runs the ingest pipeline for one decoded webhook call.
type WebhookProcessor interface {
	ProcessWebhookEvent(ctx context.Context, env *models.InboundEnvelope) *models.WebhookResponse
}

// ZoomWebhookHandler handles Zoom webhook events.
type ZoomWebhookHandler struct {
	processor          WebhookProcessor
	signatureValidator SignatureValidator
}

// NewZoomWebhookHandler creates a new ZoomWebhookHandler.
func NewZoomWebhookHandler(processor WebhookProcessor, signatureValidator SignatureValidator) *ZoomWebhookHandler {
	if signatureValidator == nil {
		signatureValidator = webhook.NewNoopSignatureValidator()
	}
	return &ZoomWebhookHandler{
		processor:          processor,
		signatureValidator: signatureValidator,
	}
}

// ServeHTTP accepts a Zoom webhook call. Every outcome after the method check
// is answered with 200 so Zoom never redelivers.
func (h *ZoomWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set(constants.ContentTypeHeader, "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
		return
	}

	body, ok := middleware.GetRawBodyFromContext(ctx)
	if !ok {
		var err error
		body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxWebhookBodyBytes))
		if err != nil {
			slog.ErrorContext(ctx, "failed to read zoom webhook body", logging.ErrKey, err)
			writeJSON(ctx, w, models.WebhookAck{Status: constants.StatusIgnored})
			return
		}
	}

	env, err := DecodeEnvelope(body)
	if err != nil {
		slog.WarnContext(ctx, "malformed zoom webhook body, auditing raw body", logging.ErrKey, err)
	}

	if !webhook.IsChallenge(env.Event) {
		signature := r.Header.Get(constants.ZoomSignatureHeader)
		timestamp := r.Header.Get(constants.ZoomRequestTimestampHeader)
		if err := h.signatureValidator.ValidateSignature(body, signature, timestamp); err != nil {
			slog.WarnContext(ctx, "rejected zoom webhook with invalid signature",
				logging.ErrKey, err,
				"zoom_event", env.Event,
			)
			writeJSON(ctx, w, models.WebhookAck{Status: constants.StatusIgnored})
			return
		}
	}

	resp := h.processor.ProcessWebhookEvent(ctx, env)
	writeJSON(ctx, w, resp.Body())
}

// DecodeEnvelope parses a webhook body. Numbers are kept as json.Number so
// large meeting ids survive. A body that is not a JSON object yields an
// envelope with an empty event and the raw body under "raw_body", together
// with the decode error. A payload that is not an object is kept under "value".
func DecodeEnvelope(body []byte) (*models.InboundEnvelope, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil || raw == nil {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return &models.InboundEnvelope{
			Payload: map[string]any{"raw_body": string(body)},
		}, err
	}

	env := &models.InboundEnvelope{EventTS: raw["event_ts"]}
	env.Event, _ = raw["event"].(string)

	switch p := raw["payload"].(type) {
	case map[string]any:
		env.Payload = p
	case nil:
		env.Payload = map[string]any{}
	default:
		env.Payload = map[string]any{"value": p}
	}

	return env, nil
}

func writeJSON(ctx context.Context, w http.ResponseWriter, body any) {
	w.Header().Set(constants.ContentTypeHeader, "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "failed to encode zoom webhook response", logging.ErrKey, err)
	}
}
