// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
)

// MockPersistenceGateway implements domain.PersistenceGateway for testing
type MockPersistenceGateway struct {
	mock.Mock
}

func (m *MockPersistenceGateway) InsertAudit(ctx context.Context, record *models.RawAuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPersistenceGateway) InsertParticipantEvent(ctx context.Context, event *models.ParticipantEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPersistenceGateway) InsertRecordingArtifact(ctx context.Context, artifact *models.RecordingArtifact) error {
	args := m.Called(ctx, artifact)
	return args.Error(0)
}

func (m *MockPersistenceGateway) LookupIdentityByEmail(ctx context.Context, email string) (*models.InternalIdentity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InternalIdentity), args.Error(1)
}

func (m *MockPersistenceGateway) LookupIdentityByDisplayName(ctx context.Context, displayName string) (*models.InternalIdentity, error) {
	args := m.Called(ctx, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InternalIdentity), args.Error(1)
}

func (m *MockPersistenceGateway) IsReady(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
