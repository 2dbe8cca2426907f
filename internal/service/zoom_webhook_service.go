// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/normalizer"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/role"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/redaction"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/utils"
)

const instrumentationName = "github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/service"

// Record names used in logs and the persistence failure metric.
const (
	recordAudit       = "audit"
	recordParticipant = "participant_event"
	recordRecording   = "recording_artifact"
)

// ChallengeResponder answers the endpoint URL validation handshake.
type ChallengeResponder interface {
	HandleChallenge(payload map[string]any) *models.ValidationChallenge
}

// ZoomWebhookService runs the ingest pipeline for one webhook call: audit,
// normalize, resolve roles, persist and optionally publish.
type ZoomWebhookService struct {
	gateway    domain.PersistenceGateway
	challenger ChallengeResponder
	resolver   *role.Resolver
	publisher  domain.EventPublisher

	now    func() time.Time
	newUID func() string

	tracer   trace.Tracer
	received metric.Int64Counter
	failures metric.Int64Counter
}

// ServiceOption configures a ZoomWebhookService.
type ServiceOption func(*ZoomWebhookService)

// WithPublisher fans persisted records out to NATS subjects.
func WithPublisher(publisher domain.EventPublisher) ServiceOption {
	return func(s *ZoomWebhookService) {
		s.publisher = publisher
	}
}

// WithClock overrides the clock used for received_at and created_at.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ZoomWebhookService) {
		s.now = now
	}
}

// WithUIDGenerator overrides how record UIDs are generated.
func WithUIDGenerator(newUID func() string) ServiceOption {
	return func(s *ZoomWebhookService) {
		s.newUID = newUID
	}
}

// NewZoomWebhookService creates a new ZoomWebhookService. The gateway also
// serves as the identity directory for role resolution.
func NewZoomWebhookService(
	gateway domain.PersistenceGateway,
	challenger ChallengeResponder,
	opts ...ServiceOption,
) *ZoomWebhookService {
	s := &ZoomWebhookService{
		gateway:    gateway,
		challenger: challenger,
		now:        time.Now,
		newUID:     uuid.NewString,
		tracer:     otel.Tracer(instrumentationName),
	}
	if gateway != nil {
		s.resolver = role.NewResolver(gateway)
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := otel.Meter(instrumentationName)
	var err error
	s.received, err = meter.Int64Counter("zoom_ingest.events.received",
		metric.WithDescription("Zoom webhook calls accepted by the ingest pipeline"))
	if err != nil {
		slog.Warn("failed to create events counter", logging.ErrKey, err)
		s.received = noop.Int64Counter{}
	}
	s.failures, err = meter.Int64Counter("zoom_ingest.persistence.failures",
		metric.WithDescription("Records that could not be written to the store"))
	if err != nil {
		slog.Warn("failed to create persistence failure counter", logging.ErrKey, err)
		s.failures = noop.Int64Counter{}
	}

	return s
}

// ServiceReady checks if the service is ready to process requests
func (s *ZoomWebhookService) ServiceReady() bool {
	return s.gateway != nil && s.challenger != nil && s.resolver != nil
}

// Ready reports whether the backing store is reachable.
func (s *ZoomWebhookService) Ready(ctx context.Context) error {
	if !s.ServiceReady() {
		return domain.NewUnavailableError("zoom webhook service is not configured")
	}
	return s.gateway.IsReady(ctx)
}

// ProcessWebhookEvent runs the ingest pipeline for env. It never fails:
// persistence problems are logged and counted, and the caller always gets
// an acknowledgment so Zoom does not redeliver.
func (s *ZoomWebhookService) ProcessWebhookEvent(ctx context.Context, env *models.InboundEnvelope) *models.WebhookResponse {
	if env == nil {
		env = &models.InboundEnvelope{}
	}

	kind := normalizer.Classify(env.Event)

	ctx, span := s.tracer.Start(ctx, "zoom_ingest.process",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("zoom.event", env.Event),
			attribute.String("zoom.event_kind", kind.String()),
		),
	)
	defer span.End()

	ctx = logging.AppendCtx(ctx, slog.String("zoom_event", env.Event))
	s.received.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", env.Event),
		attribute.String("kind", kind.String()),
	))

	if kind == normalizer.KindChallenge {
		slog.InfoContext(ctx, "answering zoom endpoint url validation")
		return &models.WebhookResponse{Challenge: s.challenger.HandleChallenge(env.Payload)}
	}

	receivedAt := s.now().UTC()
	result := normalizer.Normalize(env, receivedAt)

	s.insertAudit(ctx, span, env, result.Audit, receivedAt)

	for _, warning := range result.Warnings {
		slog.WarnContext(ctx, "recovered malformed payload field", logging.ErrKey, warning)
	}
	if result.Skipped != nil {
		slog.WarnContext(ctx, "structured record skipped", logging.ErrKey, result.Skipped)
	}

	switch result.Kind {
	case normalizer.KindParticipant:
		if result.Participant != nil {
			s.persistParticipant(ctx, span, result.Participant)
		}
	case normalizer.KindRecording:
		s.persistRecordings(ctx, span, result.Recordings)
	default:
		slog.DebugContext(ctx, "no structured record for event")
	}

	return &models.WebhookResponse{Ack: &models.WebhookAck{Status: constants.StatusReceived}}
}

func (s *ZoomWebhookService) insertAudit(ctx context.Context, span trace.Span, env *models.InboundEnvelope, meta normalizer.AuditMetadata, receivedAt time.Time) {
	body := env.Payload
	if body == nil {
		body = map[string]any{}
	}

	record := &models.RawAuditRecord{
		UID:               s.newUID(),
		EventKind:         env.Event,
		ExternalMeetingID: meta.ExternalMeetingID,
		AccountIdentifier: meta.AccountIdentifier,
		Payload:           body,
		ReceivedAt:        receivedAt,
	}

	if err := s.gateway.InsertAudit(ctx, record); err != nil {
		s.persistenceFailed(ctx, span, recordAudit, err,
			logging.PriorityCritical(),
			slog.String("audit_uid", record.UID),
		)
		return
	}

	slog.DebugContext(ctx, "audit record stored", "audit_uid", record.UID)
}

func (s *ZoomWebhookService) persistParticipant(ctx context.Context, span trace.Span, draft *normalizer.ParticipantDraft) {
	event := draft.Event
	event.UID = s.newUID()
	event.ParticipantRole = s.resolver.Resolve(ctx, draft.Descriptor)

	if err := s.gateway.InsertParticipantEvent(ctx, event); err != nil {
		s.persistenceFailed(ctx, span, recordParticipant, err,
			slog.String("meeting_id", event.MeetingID),
			slog.String("participant_email", redaction.RedactEmail(draft.Descriptor.Email)),
		)
		return
	}

	slog.InfoContext(ctx, "participant event stored",
		"meeting_id", event.MeetingID,
		"event_kind", event.EventKind,
		"participant_role", event.ParticipantRole,
	)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishParticipantEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish participant event", logging.ErrKey, err, "uid", event.UID)
	}
}

// persistRecordings writes artifacts one at a time in file order. A failed
// write does not stop the remaining ones.
func (s *ZoomWebhookService) persistRecordings(ctx context.Context, span trace.Span, artifacts []*models.RecordingArtifact) {
	stored := 0
	for i, artifact := range artifacts {
		artifact.UID = s.newUID()

		if err := s.gateway.InsertRecordingArtifact(ctx, artifact); err != nil {
			s.persistenceFailed(ctx, span, recordRecording, err,
				slog.String("meeting_id", artifact.MeetingID),
				slog.Int("file_index", i),
				slog.String("host_email", redaction.RedactEmail(utils.StringValue(artifact.HostEmail))),
			)
			continue
		}
		stored++

		if s.publisher == nil {
			continue
		}
		if err := s.publisher.PublishRecordingArtifact(ctx, artifact); err != nil {
			slog.ErrorContext(ctx, "failed to publish recording artifact", logging.ErrKey, err, "uid", artifact.UID)
		}
	}

	slog.InfoContext(ctx, "recording artifacts stored", "stored", stored, "files", len(artifacts))
}

func (s *ZoomWebhookService) persistenceFailed(ctx context.Context, span trace.Span, record string, err error, attrs ...slog.Attr) {
	span.RecordError(err, trace.WithAttributes(attribute.String("record", record)))
	span.SetStatus(codes.Error, "persistence failure")

	s.failures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("record", record),
		attribute.String("error_type", domain.GetErrorType(err).String()),
	))

	args := []any{logging.ErrKey, err, slog.String("record", record)}
	for _, attr := range attrs {
		args = append(args, attr)
	}
	slog.ErrorContext(ctx, "failed to persist record", args...)
}
