// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/constants"
)

// RecordingEventKind is the normalized kind of a recording artifact.
type RecordingEventKind string

// RecordingEventKind values.
const (
	RecordingCompleted RecordingEventKind = "recording_completed"
	RecordingStopped   RecordingEventKind = "recording_stopped"
)

// RecordingEventKindFromZoom maps a Zoom event name onto a recording event kind.
func RecordingEventKindFromZoom(event string) (RecordingEventKind, bool) {
	switch event {
	case constants.ZoomEventRecordingCompleted:
		return RecordingCompleted, true
	case constants.ZoomEventRecordingStopped:
		return RecordingStopped, true
	}
	return "", false
}

// RecordingArtifact is one file entry of a recording event.
type RecordingArtifact struct {
	UID             string             `json:"uid"`
	MeetingID       string             `json:"meeting_id"`
	MeetingUUID     *string            `json:"meeting_uuid,omitempty"`
	EventKind       RecordingEventKind `json:"event_kind"`
	HostEmail       *string            `json:"host_email,omitempty"`
	RecordingType   *string            `json:"recording_type,omitempty"`
	ParticipantRole ParticipantRole    `json:"participant_role"`
	RecordingStart  *time.Time         `json:"recording_start,omitempty"`
	RecordingEnd    *time.Time         `json:"recording_end,omitempty"`
	RawFile         map[string]any     `json:"raw_file"`
	CreatedAt       time.Time          `json:"created_at"`
}
