// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"strings"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
)

// ConnectionChecker reports the state of the NATS connection.
type ConnectionChecker interface {
	IsConnected() bool
}

// NatsStores holds the KV buckets backing the gateway.
type NatsStores struct {
	Audit              INatsKeyValue
	ParticipantEvents  INatsKeyValue
	RecordingArtifacts INatsKeyValue
	Identities         INatsKeyValue
}

// NatsGateway implements domain.PersistenceGateway on NATS JetStream KV.
// Records are append-only; the directory is read with case-folded keys.
type NatsGateway struct {
	conn         ConnectionChecker
	keys         *KeyBuilder
	audit        *NatsBaseRepository[models.RawAuditRecord]
	participants *NatsBaseRepository[models.ParticipantEvent]
	recordings   *NatsBaseRepository[models.RecordingArtifact]
	identities   *NatsBaseRepository[models.InternalIdentity]
}

// NewNatsGateway creates a new NATS KV backed persistence gateway
func NewNatsGateway(conn ConnectionChecker, stores NatsStores) *NatsGateway {
	return &NatsGateway{
		conn:         conn,
		keys:         NewKeyBuilder(""),
		audit:        NewNatsBaseRepository[models.RawAuditRecord](stores.Audit, "audit record"),
		participants: NewNatsBaseRepository[models.ParticipantEvent](stores.ParticipantEvents, "participant event"),
		recordings:   NewNatsBaseRepository[models.RecordingArtifact](stores.RecordingArtifacts, "recording artifact"),
		identities:   NewNatsBaseRepository[models.InternalIdentity](stores.Identities, "identity"),
	}
}

// IsReady checks the connection and that every bucket is bound
func (g *NatsGateway) IsReady(ctx context.Context) error {
	if g.conn == nil || !g.conn.IsConnected() {
		return domain.NewUnavailableError("NATS connection not established")
	}
	if !g.audit.IsReady() || !g.participants.IsReady() || !g.recordings.IsReady() || !g.identities.IsReady() {
		return domain.NewUnavailableError("NATS KV buckets not bound")
	}
	return nil
}

// InsertAudit stores a raw webhook call
func (g *NatsGateway) InsertAudit(ctx context.Context, record *models.RawAuditRecord) error {
	return g.audit.Create(ctx, g.keys.EntityKey(KeyPrefixAudit, record.UID), record)
}

// InsertParticipantEvent stores a normalized participant event
func (g *NatsGateway) InsertParticipantEvent(ctx context.Context, event *models.ParticipantEvent) error {
	return g.participants.Create(ctx, g.keys.MeetingEntityKey(KeyPrefixParticipant, event.MeetingID, event.UID), event)
}

// InsertRecordingArtifact stores one recording file record
func (g *NatsGateway) InsertRecordingArtifact(ctx context.Context, artifact *models.RecordingArtifact) error {
	return g.recordings.Create(ctx, g.keys.MeetingEntityKey(KeyPrefixRecording, artifact.MeetingID, artifact.UID), artifact)
}

// LookupIdentityByEmail reads the directory entry indexed by email
func (g *NatsGateway) LookupIdentityByEmail(ctx context.Context, email string) (*models.InternalIdentity, error) {
	return g.lookupIdentity(ctx, KeyPrefixIdentityEmail, email)
}

// LookupIdentityByDisplayName reads the directory entry indexed by display name
func (g *NatsGateway) LookupIdentityByDisplayName(ctx context.Context, displayName string) (*models.InternalIdentity, error) {
	return g.lookupIdentity(ctx, KeyPrefixIdentityName, displayName)
}

func (g *NatsGateway) lookupIdentity(ctx context.Context, indexType, value string) (*models.InternalIdentity, error) {
	if strings.TrimSpace(value) == "" {
		return nil, domain.ErrIdentityNotFound
	}
	return g.identities.Get(ctx, g.keys.IdentityKey(indexType, value))
}
