// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/go-viper/mapstructure/v2"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/constants"
)

// INatsConn is the NATS connection interface the publisher needs.
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder builds ingest messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// publish sends the message to the NATS server.
func (m *MessageBuilder) publish(ctx context.Context, subject string, data []byte) error {
	if m.NatsConn == nil || !m.NatsConn.IsConnected() {
		slog.WarnContext(ctx, "NATS connection not available, dropping message", "subject", subject)
		return domain.NewUnavailableError("NATS connection not available")
	}
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// sendIngestMessage wraps a record in an IngestMessage and publishes it.
func (m *MessageBuilder) sendIngestMessage(ctx context.Context, subject string, record any) error {
	dataBytes, err := json.Marshal(record)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling data into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	// Consumers read the record as a plain JSON object.
	var jsonData any
	if err := json.Unmarshal(dataBytes, &jsonData); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling data into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	var payload map[string]any
	config := mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &payload,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err != nil {
		slog.ErrorContext(ctx, "error creating decoder", logging.ErrKey, err, "subject", subject)
		return err
	}
	if err := decoder.Decode(jsonData); err != nil {
		slog.ErrorContext(ctx, "error decoding data", logging.ErrKey, err, "subject", subject)
		return err
	}

	headers := map[string]string{}
	if requestID, ok := ctx.Value(constants.RequestIDContextID).(string); ok && requestID != "" {
		headers[constants.RequestIDHeader] = requestID
	}

	message := models.IngestMessage{
		Action:  models.ActionCreated,
		Headers: headers,
		Data:    payload,
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}

	return m.publish(ctx, subject, messageBytes)
}

// PublishParticipantEvent announces a persisted participant event.
func (m *MessageBuilder) PublishParticipantEvent(ctx context.Context, event *models.ParticipantEvent) error {
	return m.sendIngestMessage(ctx, models.ParticipantEventSubject, event)
}

// PublishRecordingArtifact announces a persisted recording artifact.
func (m *MessageBuilder) PublishRecordingArtifact(ctx context.Context, artifact *models.RecordingArtifact) error {
	return m.sendIngestMessage(ctx, models.RecordingArtifactSubject, artifact)
}
