// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// NATS subjects that the zoom ingest service publishes normalized records to.
const (
	// ParticipantEventSubject carries every persisted participant join/leave record.
	// The subject is of the form: lfx.zoom-ingest.participant_event
	ParticipantEventSubject = "lfx.zoom-ingest.participant_event"

	// RecordingArtifactSubject carries every persisted recording file record.
	// The subject is of the form: lfx.zoom-ingest.recording_artifact
	RecordingArtifactSubject = "lfx.zoom-ingest.recording_artifact"
)

// MessageAction is a type for the action of an ingest message.
type MessageAction string

// MessageAction constants for the action of an ingest message.
const (
	// ActionCreated is the action for a newly ingested record.
	ActionCreated MessageAction = "created"
)

// IngestMessage is the NATS message schema for normalized records.
type IngestMessage struct {
	Action  MessageAction     `json:"action"`
	Headers map[string]string `json:"headers,omitempty"`
	Data    any               `json:"data"`
}
