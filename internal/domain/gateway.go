// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
)

// AuditWriter appends raw webhook calls to the audit store.
type AuditWriter interface {
	InsertAudit(ctx context.Context, record *models.RawAuditRecord) error
}

// ParticipantEventWriter stores normalized participant join/leave records.
type ParticipantEventWriter interface {
	InsertParticipantEvent(ctx context.Context, event *models.ParticipantEvent) error
}

// RecordingArtifactWriter stores normalized recording file records.
type RecordingArtifactWriter interface {
	InsertRecordingArtifact(ctx context.Context, artifact *models.RecordingArtifact) error
}

// IdentityDirectory is the read-only roster used for role resolution.
// Both lookups are case-insensitive and return an error of type
// ErrorTypeNotFound on a miss.
type IdentityDirectory interface {
	LookupIdentityByEmail(ctx context.Context, email string) (*models.InternalIdentity, error)
	LookupIdentityByDisplayName(ctx context.Context, displayName string) (*models.InternalIdentity, error)
}

// PersistenceGateway is everything the ingest pipeline needs from storage.
// It can be implemented by different storage backends (PostgreSQL, NATS KV).
type PersistenceGateway interface {
	AuditWriter
	ParticipantEventWriter
	RecordingArtifactWriter
	IdentityDirectory

	// IsReady reports whether the backing store can serve requests.
	IsReady(ctx context.Context) error
}

// EventPublisher fans persisted records out to downstream consumers.
type EventPublisher interface {
	PublishParticipantEvent(ctx context.Context, event *models.ParticipantEvent) error
	PublishRecordingArtifact(ctx context.Context, artifact *models.RecordingArtifact) error
}
