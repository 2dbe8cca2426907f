// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package normalizer maps raw Zoom webhook envelopes onto the canonical
// participant and recording records.
package normalizer

import (
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/infrastructure/zoom/webhook"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/payload"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/role"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/timestamp"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/utils"
)

// Kind classifies an envelope.
type Kind int

const (
	// KindUnhandled gets an acknowledgment and an audit row only.
	KindUnhandled Kind = iota
	// KindChallenge is the endpoint URL validation handshake.
	KindChallenge
	// KindParticipant is a participant joined or left event.
	KindParticipant
	// KindRecording is a recording completed or stopped event.
	KindRecording
)

func (k Kind) String() string {
	switch k {
	case KindChallenge:
		return "challenge"
	case KindParticipant:
		return "participant"
	case KindRecording:
		return "recording"
	default:
		return "unhandled"
	}
}

// Classify returns the kind of a Zoom event name.
func Classify(event string) Kind {
	if webhook.IsChallenge(event) {
		return KindChallenge
	}
	if _, ok := models.ParticipantEventKindFromZoom(event); ok {
		return KindParticipant
	}
	if _, ok := models.RecordingEventKindFromZoom(event); ok {
		return KindRecording
	}
	return KindUnhandled
}

// AuditMetadata is the searchable part of a raw audit record.
type AuditMetadata struct {
	ExternalMeetingID *string
	AccountIdentifier *string
}

// ParticipantDraft is a participant event still waiting for its role.
type ParticipantDraft struct {
	Event      *models.ParticipantEvent
	Descriptor role.Descriptor
}

// Result is everything extracted from one envelope.
type Result struct {
	Kind        Kind
	Audit       AuditMetadata
	Participant *ParticipantDraft
	Recordings  []*models.RecordingArtifact
	// Skipped holds the reason a structured record was dropped, if any.
	Skipped error
	// Warnings collects decode problems that were recovered by defaulting fields.
	Warnings []error
}

// Normalize extracts the audit metadata and structured records from env.
// receivedAt is the last fallback for a participant event time and the
// creation time of every record. Missing fields degrade to absent.
func Normalize(env *models.InboundEnvelope, receivedAt time.Time) Result {
	if env == nil {
		return Result{Kind: KindUnhandled}
	}

	result := Result{
		Kind:  Classify(env.Event),
		Audit: ExtractAuditMetadata(env.Payload),
	}

	switch result.Kind {
	case KindParticipant:
		normalizeParticipant(env, receivedAt, &result)
	case KindRecording:
		normalizeRecording(env, receivedAt, &result)
	}

	return result
}

// ExtractAuditMetadata reads payload.object.id and payload.account_id.
func ExtractAuditMetadata(body map[string]any) AuditMetadata {
	var meta AuditMetadata
	if id, ok := payload.IDAt(body, "object", "id"); ok {
		meta.ExternalMeetingID = &id
	}
	if account, ok := payload.IDAt(body, "account_id"); ok {
		meta.AccountIdentifier = &account
	}
	return meta
}

type meetingObject struct {
	ID   string
	UUID *string
}

func extractMeeting(body map[string]any) (meetingObject, map[string]any, error) {
	object := payload.MapAt(body, "object")

	id, ok := payload.ID(object["id"])
	if !ok {
		return meetingObject{}, object, domain.ErrMissingMeetingID
	}

	var uuid *string
	if v, ok := payload.ID(object["uuid"]); ok {
		uuid = &v
	}
	return meetingObject{ID: id, UUID: uuid}, object, nil
}

func normalizeParticipant(env *models.InboundEnvelope, receivedAt time.Time, result *Result) {
	kind, _ := models.ParticipantEventKindFromZoom(env.Event)

	meeting, object, err := extractMeeting(env.Payload)
	if err != nil {
		result.Skipped = err
		return
	}

	var participant participantView
	if raw := payload.MapAt(object, "participant"); raw != nil {
		if err := decodeView(raw, &participant); err != nil {
			result.Warnings = append(result.Warnings, err)
		}
	}

	event := &models.ParticipantEvent{
		MeetingID:        meeting.ID,
		MeetingUUID:      meeting.UUID,
		EventKind:        kind,
		ParticipantName:  utils.NonEmptyStringPtr(participant.UserName),
		ParticipantEmail: utils.NonEmptyStringPtr(participant.Email),
		Payload:          env.Payload,
		CreatedAt:        receivedAt,
	}

	participantTime := participant.JoinTime
	if kind == models.ParticipantLeft {
		participantTime = participant.LeaveTime
	}
	eventTime := timestamp.First(participantTime, envelopeTimestamp(env), receivedAt)
	event.SetEventTime(eventTime)

	result.Participant = &ParticipantDraft{
		Event: event,
		Descriptor: role.Descriptor{
			Role:        participant.Role,
			Email:       participant.Email,
			DisplayName: participant.UserName,
		},
	}
}

// envelopeTimestamp returns event_ts from the top level of the body, or from
// the payload when a relay nested it there.
func envelopeTimestamp(env *models.InboundEnvelope) any {
	if env.EventTS != nil {
		return env.EventTS
	}
	ts, _ := payload.Lookup(env.Payload, "event_ts")
	return ts
}

func normalizeRecording(env *models.InboundEnvelope, receivedAt time.Time, result *Result) {
	kind, _ := models.RecordingEventKindFromZoom(env.Event)

	meeting, object, err := extractMeeting(env.Payload)
	if err != nil {
		result.Skipped = err
		return
	}

	hostEmail, _ := payload.String(object["host_email"])
	files := payload.Slice(object["recording_files"])
	artifacts := make([]*models.RecordingArtifact, 0, len(files))

	for _, entry := range files {
		raw, ok := payload.Map(entry)
		if !ok {
			continue
		}

		var file recordingFileView
		if err := decodeView(raw, &file); err != nil {
			result.Warnings = append(result.Warnings, err)
		}

		artifacts = append(artifacts, &models.RecordingArtifact{
			MeetingID:       meeting.ID,
			MeetingUUID:     meeting.UUID,
			EventKind:       kind,
			HostEmail:       utils.NonEmptyStringPtr(hostEmail),
			RecordingType:   utils.NonEmptyStringPtr(file.RecordingType),
			ParticipantRole: models.RoleSystem,
			RecordingStart:  timestamp.NormalizePtr(file.RecordingStart),
			RecordingEnd:    timestamp.NormalizePtr(file.RecordingEnd),
			RawFile:         raw,
			CreatedAt:       receivedAt,
		})
	}

	result.Recordings = artifacts
}
