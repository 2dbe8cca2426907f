// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
)

const tracerName = "github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/infrastructure/store/postgres"

const queryTimeout = 5 * time.Second

const (
	insertAuditSQL = `
		INSERT INTO zoom_webhook_events (id, event_type, external_meeting_id, account_id, payload, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	insertParticipantEventSQL = `
		INSERT INTO zoom_participant_events (
			id, meeting_id, meeting_uuid, event_type, participant_name, participant_email,
			participant_role, join_time, leave_time, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	insertRecordingArtifactSQL = `
		INSERT INTO zoom_recording_artifacts (
			id, meeting_id, meeting_uuid, event_type, host_email, recording_type,
			participant_role, recording_start, recording_end, raw_file, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	selectIdentityByEmailSQL = `
		SELECT email, display_name, role FROM internal_identities
		WHERE lower(email) = lower($1)
		LIMIT 1`

	selectIdentityByDisplayNameSQL = `
		SELECT email, display_name, role FROM internal_identities
		WHERE lower(display_name) = lower($1)
		LIMIT 1`
)

// DBTX is the subset of *pgxpool.Pool the gateway needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// Gateway implements domain.PersistenceGateway on PostgreSQL.
type Gateway struct {
	db DBTX
}

// NewGateway wraps an existing connection or pool.
func NewGateway(db DBTX) *Gateway {
	return &Gateway{db: db}
}

// NewPool opens and pings a connection pool.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

func startSpan(ctx context.Context, operation, table string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "postgres."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.sql.table", table),
		),
	)
}

func (g *Gateway) exec(ctx context.Context, table, entity, query string, args ...any) error {
	ctx, span := startSpan(ctx, "insert", table)
	defer span.End()

	if g.db == nil {
		err := domain.NewUnavailableError("database is not configured")
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := g.db.Exec(ctx, query, args...); err != nil {
		slog.ErrorContext(ctx, fmt.Sprintf("error inserting %s", entity), logging.ErrKey, err, "table", table)

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			err = domain.NewConflictError(fmt.Sprintf("%s already exists", entity), err)
		} else {
			err = domain.NewInternalError(fmt.Sprintf("failed to insert %s", entity), err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func marshalJSONB(value map[string]any) ([]byte, error) {
	if value == nil {
		value = map[string]any{}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, domain.NewInternalError("failed to marshal jsonb column", err)
	}
	return data, nil
}

// IsReady pings the database.
func (g *Gateway) IsReady(ctx context.Context) error {
	if g.db == nil {
		return domain.NewUnavailableError("database is not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := g.db.Ping(ctx); err != nil {
		return domain.NewUnavailableError("database ping failed", err)
	}
	return nil
}

// InsertAudit appends a raw webhook call to zoom_webhook_events.
func (g *Gateway) InsertAudit(ctx context.Context, record *models.RawAuditRecord) error {
	payload, err := marshalJSONB(record.Payload)
	if err != nil {
		return err
	}
	return g.exec(ctx, "zoom_webhook_events", "audit record", insertAuditSQL,
		record.UID,
		record.EventKind,
		record.ExternalMeetingID,
		record.AccountIdentifier,
		payload,
		record.ReceivedAt,
	)
}

// InsertParticipantEvent appends a normalized join or leave.
func (g *Gateway) InsertParticipantEvent(ctx context.Context, event *models.ParticipantEvent) error {
	payload, err := marshalJSONB(event.Payload)
	if err != nil {
		return err
	}
	return g.exec(ctx, "zoom_participant_events", "participant event", insertParticipantEventSQL,
		event.UID,
		event.MeetingID,
		event.MeetingUUID,
		string(event.EventKind),
		event.ParticipantName,
		event.ParticipantEmail,
		string(event.ParticipantRole),
		event.JoinTime,
		event.LeaveTime,
		payload,
		event.CreatedAt,
	)
}

// InsertRecordingArtifact appends one recording file.
func (g *Gateway) InsertRecordingArtifact(ctx context.Context, artifact *models.RecordingArtifact) error {
	rawFile, err := marshalJSONB(artifact.RawFile)
	if err != nil {
		return err
	}
	return g.exec(ctx, "zoom_recording_artifacts", "recording artifact", insertRecordingArtifactSQL,
		artifact.UID,
		artifact.MeetingID,
		artifact.MeetingUUID,
		string(artifact.EventKind),
		artifact.HostEmail,
		artifact.RecordingType,
		string(artifact.ParticipantRole),
		artifact.RecordingStart,
		artifact.RecordingEnd,
		rawFile,
		artifact.CreatedAt,
	)
}

// LookupIdentityByEmail matches the roster by email, ignoring case.
func (g *Gateway) LookupIdentityByEmail(ctx context.Context, email string) (*models.InternalIdentity, error) {
	return g.lookupIdentity(ctx, selectIdentityByEmailSQL, email)
}

// LookupIdentityByDisplayName matches the roster by display name, ignoring case.
func (g *Gateway) LookupIdentityByDisplayName(ctx context.Context, displayName string) (*models.InternalIdentity, error) {
	return g.lookupIdentity(ctx, selectIdentityByDisplayNameSQL, displayName)
}

func (g *Gateway) lookupIdentity(ctx context.Context, query, value string) (*models.InternalIdentity, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, domain.ErrIdentityNotFound
	}

	ctx, span := startSpan(ctx, "select", "internal_identities")
	defer span.End()

	if g.db == nil {
		return nil, domain.NewUnavailableError("database is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var identity models.InternalIdentity
	err := g.db.QueryRow(ctx, query, value).Scan(&identity.Email, &identity.DisplayName, &identity.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.NewNotFoundError("identity not found", err)
		}
		err = domain.NewInternalError("failed to query identity", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &identity, nil
}
