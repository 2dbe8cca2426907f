// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
)

type execCall struct {
	sql  string
	args []any
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch target := d.(type) {
		case **string:
			if v, ok := r.values[i].(*string); ok {
				*target = v
			}
		case *string:
			*target = r.values[i].(string)
		}
	}
	return nil
}

type fakeDB struct {
	execs   []execCall
	execErr error
	row     fakeRow
	queries []execCall
	pingErr error
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, execCall{sql: sql, args: args})
	return f.row
}

func (f *fakeDB) Ping(ctx context.Context) error { return f.pingErr }

func strPtr(s string) *string { return &s }

func TestGateway_IsReady(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, NewGateway(&fakeDB{}).IsReady(ctx))

	err := NewGateway(&fakeDB{pingErr: errors.New("refused")}).IsReady(ctx)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))

	err = NewGateway(nil).IsReady(ctx)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}

func TestGateway_InsertAudit(t *testing.T) {
	db := &fakeDB{}
	gateway := NewGateway(db)
	receivedAt := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	err := gateway.InsertAudit(context.Background(), &models.RawAuditRecord{
		UID:        "11111111-1111-1111-1111-111111111111",
		EventKind:  "",
		Payload:    map[string]any{"raw_body": "not json"},
		ReceivedAt: receivedAt,
	})

	require.NoError(t, err)
	require.Len(t, db.execs, 1)
	args := db.execs[0].args
	assert.Contains(t, db.execs[0].sql, "zoom_webhook_events")
	assert.Equal(t, "", args[1])
	assert.Nil(t, args[2])
	assert.JSONEq(t, `{"raw_body":"not json"}`, string(args[4].([]byte)))
	assert.Equal(t, receivedAt, args[5])
}

func TestGateway_InsertParticipantEvent(t *testing.T) {
	db := &fakeDB{}
	joined := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	err := NewGateway(db).InsertParticipantEvent(context.Background(), &models.ParticipantEvent{
		UID:              "22222222-2222-2222-2222-222222222222",
		MeetingID:        "85746065432",
		EventKind:        models.ParticipantJoined,
		ParticipantEmail: strPtr("jane@example.com"),
		ParticipantRole:  models.RoleTeacher,
		JoinTime:         &joined,
	})

	require.NoError(t, err)
	args := db.execs[0].args
	assert.Equal(t, "joined", args[3])
	assert.Equal(t, "teacher", args[6])
	assert.Equal(t, &joined, args[7])
	assert.JSONEq(t, `{}`, string(args[9].([]byte)))
}

func TestGateway_InsertRecordingArtifact(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db := &fakeDB{}
		err := NewGateway(db).InsertRecordingArtifact(ctx, &models.RecordingArtifact{
			UID:             "33333333-3333-3333-3333-333333333333",
			MeetingID:       "85746065432",
			EventKind:       models.RecordingStopped,
			RecordingType:   strPtr("shared_screen_with_speaker_view"),
			ParticipantRole: models.RoleStudent,
			RawFile:         map[string]any{"id": "file-1", "file_size": json.Number("1024")},
		})
		require.NoError(t, err)
		args := db.execs[0].args
		assert.Equal(t, "recording_stopped", args[3])
		assert.JSONEq(t, `{"id":"file-1","file_size":1024}`, string(args[9].([]byte)))
	})

	t.Run("unique violation is conflict", func(t *testing.T) {
		db := &fakeDB{execErr: &pgconn.PgError{Code: "23505"}}
		err := NewGateway(db).InsertRecordingArtifact(ctx, &models.RecordingArtifact{UID: "x", MeetingID: "1"})
		assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
	})

	t.Run("other failure is internal", func(t *testing.T) {
		db := &fakeDB{execErr: errors.New("connection reset")}
		err := NewGateway(db).InsertRecordingArtifact(ctx, &models.RecordingArtifact{UID: "x", MeetingID: "1"})
		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	})
}

func TestGateway_LookupIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("email hit", func(t *testing.T) {
		db := &fakeDB{row: fakeRow{values: []any{strPtr("jane@example.com"), (*string)(nil), "Teacher"}}}
		identity, err := NewGateway(db).LookupIdentityByEmail(ctx, " Jane@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, "Teacher", identity.Role)
		assert.Equal(t, "jane@example.com", *identity.Email)
		assert.Nil(t, identity.DisplayName)
		assert.Equal(t, "Jane@Example.com", db.queries[0].args[0])
		assert.Contains(t, db.queries[0].sql, "lower(email)")
	})

	t.Run("display name miss", func(t *testing.T) {
		db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
		identity, err := NewGateway(db).LookupIdentityByDisplayName(ctx, "Nobody")
		assert.Nil(t, identity)
		assert.True(t, domain.IsNotFound(err))
		assert.Contains(t, db.queries[0].sql, "lower(display_name)")
	})

	t.Run("blank value skips query", func(t *testing.T) {
		db := &fakeDB{}
		_, err := NewGateway(db).LookupIdentityByEmail(ctx, "  ")
		assert.True(t, domain.IsNotFound(err))
		assert.Empty(t, db.queries)
	})

	t.Run("query failure", func(t *testing.T) {
		db := &fakeDB{row: fakeRow{err: errors.New("timeout")}}
		_, err := NewGateway(db).LookupIdentityByEmail(ctx, "jane@example.com")
		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	})
}

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://localhost/db", "pgx5://localhost/db"},
		{"pgx5://localhost/db", "pgx5://localhost/db"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, migrateURL(tt.in))
		})
	}
}
