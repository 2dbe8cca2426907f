// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
)

// setupTestDatabase starts a PostgreSQL container and applies the migrations
func setupTestDatabase(t *testing.T) *Gateway {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:17-alpine",
		tcpostgres.WithDatabase("zoom_ingest_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, Migrate(connStr))
	// a second run is a no-op
	require.NoError(t, Migrate(connStr))

	pool, err := NewPool(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		INSERT INTO internal_identities (id, email, display_name, role) VALUES
		('44444444-4444-4444-4444-444444444444', 'Jane@Example.com', 'Jane Doe', 'teacher'),
		('55555555-5555-5555-5555-555555555555', NULL, 'Sam Seller', 'sales')`)
	require.NoError(t, err)

	return NewGateway(pool)
}

func TestGatewayIntegration(t *testing.T) {
	gateway := setupTestDatabase(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, gateway.IsReady(ctx))

	t.Run("audit insert", func(t *testing.T) {
		err := gateway.InsertAudit(ctx, &models.RawAuditRecord{
			UID:        "11111111-1111-1111-1111-111111111111",
			EventKind:  "meeting.participant_joined",
			Payload:    map[string]any{"object": map[string]any{"id": "85746065432"}},
			ReceivedAt: now,
		})
		assert.NoError(t, err)
	})

	t.Run("participant insert", func(t *testing.T) {
		err := gateway.InsertParticipantEvent(ctx, &models.ParticipantEvent{
			UID:             "22222222-2222-2222-2222-222222222222",
			MeetingID:       "85746065432",
			EventKind:       models.ParticipantLeft,
			ParticipantRole: models.RoleStudent,
			LeaveTime:       &now,
			CreatedAt:       now,
		})
		assert.NoError(t, err)
	})

	t.Run("duplicate recording uid conflicts", func(t *testing.T) {
		artifact := &models.RecordingArtifact{
			UID:             "33333333-3333-3333-3333-333333333333",
			MeetingID:       "85746065432",
			EventKind:       models.RecordingCompleted,
			ParticipantRole: models.RoleStudent,
			RawFile:         map[string]any{"id": "file-1"},
			CreatedAt:       now,
		}
		require.NoError(t, gateway.InsertRecordingArtifact(ctx, artifact))
		err := gateway.InsertRecordingArtifact(ctx, artifact)
		assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
	})

	t.Run("identity lookups ignore case", func(t *testing.T) {
		identity, err := gateway.LookupIdentityByEmail(ctx, "jane@example.COM")
		require.NoError(t, err)
		assert.Equal(t, "teacher", identity.Role)

		identity, err = gateway.LookupIdentityByDisplayName(ctx, "sam seller")
		require.NoError(t, err)
		assert.Nil(t, identity.Email)
		assert.Equal(t, "sales", identity.Role)

		_, err = gateway.LookupIdentityByEmail(ctx, "nobody@example.com")
		assert.True(t, domain.IsNotFound(err))
	})
}
