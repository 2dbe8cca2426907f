// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package normalizer

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
)

var receivedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func envelope(t *testing.T, body string) *models.InboundEnvelope {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var env models.InboundEnvelope
	require.NoError(t, dec.Decode(&env))
	return &env
}

func TestClassify(t *testing.T) {
	tests := []struct {
		event    string
		expected Kind
	}{
		{"endpoint.url_validation", KindChallenge},
		{"meeting.participant_joined", KindParticipant},
		{"meeting.participant_left", KindParticipant},
		{"recording.completed", KindRecording},
		{"recording.stopped", KindRecording},
		{"meeting.started", KindUnhandled},
		{"foo.bar", KindUnhandled},
		{"", KindUnhandled},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.event))
		})
	}
}

func TestNormalize_ParticipantJoined(t *testing.T) {
	env := envelope(t, `{
		"event": "meeting.participant_joined",
		"event_ts": 1700000000,
		"payload": {
			"account_id": "acc-1",
			"object": {"id": 555, "uuid": "u1", "participant": {"role": "host", "email": "t@x.com", "user_name": "Tina"}}
		}
	}`)

	result := Normalize(env, receivedAt)

	require.Equal(t, KindParticipant, result.Kind)
	require.NoError(t, result.Skipped)
	require.NotNil(t, result.Participant)

	event := result.Participant.Event
	assert.Equal(t, "555", event.MeetingID)
	assert.Equal(t, "u1", *event.MeetingUUID)
	assert.Equal(t, models.ParticipantJoined, event.EventKind)
	assert.Equal(t, "Tina", *event.ParticipantName)
	assert.Equal(t, "t@x.com", *event.ParticipantEmail)
	require.NotNil(t, event.JoinTime)
	assert.True(t, time.UnixMilli(1700000000000).Equal(*event.JoinTime))
	assert.Nil(t, event.LeaveTime)
	assert.Equal(t, env.Payload, event.Payload)
	assert.Equal(t, receivedAt, event.CreatedAt)

	assert.Equal(t, "host", result.Participant.Descriptor.Role)
	assert.Equal(t, "t@x.com", result.Participant.Descriptor.Email)
	assert.Equal(t, "Tina", result.Participant.Descriptor.DisplayName)

	assert.Equal(t, "555", *result.Audit.ExternalMeetingID)
	assert.Equal(t, "acc-1", *result.Audit.AccountIdentifier)
}

func TestNormalize_ParticipantTimeSources(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		expected  time.Time
		wantJoin  bool
		wantLeave bool
	}{
		{
			name:     "participant join_time wins over event_ts",
			body:     `{"event": "meeting.participant_joined", "event_ts": 1700000000, "payload": {"object": {"id": "1", "participant": {"join_time": "2023-11-14T20:00:00Z"}}}}`,
			expected: time.Date(2023, 11, 14, 20, 0, 0, 0, time.UTC),
			wantJoin: true,
		},
		{
			name:      "participant leave_time for left events",
			body:      `{"event": "meeting.participant_left", "event_ts": 1700000000, "payload": {"object": {"id": "1", "participant": {"join_time": "2023-11-14T20:00:00Z", "leave_time": "2023-11-14T21:00:00Z"}}}}`,
			expected:  time.Date(2023, 11, 14, 21, 0, 0, 0, time.UTC),
			wantLeave: true,
		},
		{
			name:      "event_ts in milliseconds",
			body:      `{"event": "meeting.participant_left", "event_ts": 1700000000123, "payload": {"object": {"id": "1", "participant": {}}}}`,
			expected:  time.UnixMilli(1700000000123),
			wantLeave: true,
		},
		{
			name:     "unparsable participant time falls back to event_ts",
			body:     `{"event": "meeting.participant_joined", "event_ts": 1700000000, "payload": {"object": {"id": "1", "participant": {"join_time": "soon"}}}}`,
			expected: time.UnixMilli(1700000000000),
			wantJoin: true,
		},
		{
			name:     "event_ts nested in payload",
			body:     `{"event": "meeting.participant_joined", "payload": {"event_ts": 1700000000, "object": {"id": "1"}}}`,
			expected: time.UnixMilli(1700000000000),
			wantJoin: true,
		},
		{
			name:     "no timestamps falls back to received time",
			body:     `{"event": "meeting.participant_joined", "payload": {"object": {"id": "1"}}}`,
			expected: receivedAt,
			wantJoin: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(envelope(t, tt.body), receivedAt)
			require.NotNil(t, result.Participant)

			event := result.Participant.Event
			assert.Equal(t, tt.wantJoin, event.JoinTime != nil)
			assert.Equal(t, tt.wantLeave, event.LeaveTime != nil)

			got := event.JoinTime
			if tt.wantLeave {
				got = event.LeaveTime
			}
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got), "expected %s, got %s", tt.expected, *got)
		})
	}
}

func TestNormalize_ParticipantMissingObject(t *testing.T) {
	result := Normalize(envelope(t, `{"event": "meeting.participant_joined", "payload": {"object": {"id": 555}}}`), receivedAt)

	require.NotNil(t, result.Participant)
	event := result.Participant.Event
	assert.Nil(t, event.ParticipantName)
	assert.Nil(t, event.ParticipantEmail)
	assert.Nil(t, event.MeetingUUID)
	assert.Empty(t, result.Participant.Descriptor.Role)
	assert.Empty(t, result.Warnings)
}

func TestNormalize_ParticipantWeaklyTypedFields(t *testing.T) {
	body := `{"event": "meeting.participant_joined", "payload": {"object": {"id": "9", "participant": {"user_name": 12345, "email": {"nested": true}, "role": "attendee"}}}}`

	result := Normalize(envelope(t, body), receivedAt)

	require.NotNil(t, result.Participant)
	assert.Equal(t, "12345", *result.Participant.Event.ParticipantName)
	assert.Nil(t, result.Participant.Event.ParticipantEmail)
	assert.Equal(t, "attendee", result.Participant.Descriptor.Role)
	assert.NotEmpty(t, result.Warnings)
}

func TestNormalize_MissingMeetingID(t *testing.T) {
	for _, body := range []string{
		`{"event": "meeting.participant_joined", "payload": {"object": {"uuid": "u1"}}}`,
		`{"event": "meeting.participant_left", "payload": {}}`,
		`{"event": "recording.completed", "payload": {"object": {"recording_files": [{"recording_type": "audio_only"}]}}}`,
	} {
		result := Normalize(envelope(t, body), receivedAt)
		assert.ErrorIs(t, result.Skipped, domain.ErrMissingMeetingID)
		assert.Nil(t, result.Participant)
		assert.Empty(t, result.Recordings)
		assert.Nil(t, result.Audit.ExternalMeetingID)
	}
}

func TestNormalize_RecordingCompleted(t *testing.T) {
	env := envelope(t, `{
		"event": "recording.completed",
		"payload": {
			"object": {
				"id": 85746065432,
				"uuid": "4444AAAiAAAAAiAiAiiAii==",
				"host_email": "host@x.com",
				"recording_files": [
					{"id": "f1", "recording_type": "shared_screen_with_speaker_view", "recording_start": "2023-11-14T20:00:00Z", "recording_end": "2023-11-14T21:00:00Z"},
					"not-a-file",
					{"id": "f2", "recording_type": "audio_only", "recording_start": 1700000000}
				]
			}
		}
	}`)

	result := Normalize(env, receivedAt)

	require.Equal(t, KindRecording, result.Kind)
	require.Len(t, result.Recordings, 2)

	first := result.Recordings[0]
	assert.Equal(t, "85746065432", first.MeetingID)
	assert.Equal(t, "4444AAAiAAAAAiAiAiiAii==", *first.MeetingUUID)
	assert.Equal(t, models.RecordingCompleted, first.EventKind)
	assert.Equal(t, "host@x.com", *first.HostEmail)
	assert.Equal(t, "shared_screen_with_speaker_view", *first.RecordingType)
	assert.Equal(t, models.RoleSystem, first.ParticipantRole)
	assert.True(t, time.Date(2023, 11, 14, 20, 0, 0, 0, time.UTC).Equal(*first.RecordingStart))
	assert.True(t, time.Date(2023, 11, 14, 21, 0, 0, 0, time.UTC).Equal(*first.RecordingEnd))
	assert.Equal(t, "f1", first.RawFile["id"])

	second := result.Recordings[1]
	assert.Equal(t, "audio_only", *second.RecordingType)
	assert.True(t, time.UnixMilli(1700000000000).Equal(*second.RecordingStart))
	assert.Nil(t, second.RecordingEnd)
}

func TestNormalize_RecordingNoFiles(t *testing.T) {
	for _, body := range []string{
		`{"event": "recording.completed", "payload": {"object": {"id": "1", "recording_files": []}}}`,
		`{"event": "recording.stopped", "payload": {"object": {"id": "1"}}}`,
	} {
		result := Normalize(envelope(t, body), receivedAt)
		assert.Equal(t, KindRecording, result.Kind)
		assert.NoError(t, result.Skipped)
		assert.Empty(t, result.Recordings)
	}
}

func TestNormalize_Unhandled(t *testing.T) {
	result := Normalize(envelope(t, `{"event": "foo.bar", "payload": {"object": {"id": 7}, "account_id": "acc"}}`), receivedAt)

	assert.Equal(t, KindUnhandled, result.Kind)
	assert.Nil(t, result.Participant)
	assert.Empty(t, result.Recordings)
	assert.Equal(t, "7", *result.Audit.ExternalMeetingID)
	assert.Equal(t, "acc", *result.Audit.AccountIdentifier)

	assert.Equal(t, KindUnhandled, Normalize(nil, receivedAt).Kind)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "challenge", KindChallenge.String())
	assert.Equal(t, "participant", KindParticipant.String())
	assert.Equal(t, "recording", KindRecording.String())
	assert.Equal(t, "unhandled", KindUnhandled.String())
}
