// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
)

// MockEventPublisher implements domain.EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishParticipantEvent(ctx context.Context, event *models.ParticipantEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishRecordingArtifact(ctx context.Context, artifact *models.RecordingArtifact) error {
	args := m.Called(ctx, artifact)
	return args.Error(0)
}
