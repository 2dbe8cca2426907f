// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantEventKindFromZoom(t *testing.T) {
	kind, ok := ParticipantEventKindFromZoom("meeting.participant_joined")
	assert.True(t, ok)
	assert.Equal(t, ParticipantJoined, kind)

	kind, ok = ParticipantEventKindFromZoom("meeting.participant_left")
	assert.True(t, ok)
	assert.Equal(t, ParticipantLeft, kind)

	_, ok = ParticipantEventKindFromZoom("meeting.started")
	assert.False(t, ok)
}

func TestParticipantEvent_SetEventTime(t *testing.T) {
	ts := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)

	tests := []struct {
		name      string
		kind      ParticipantEventKind
		wantJoin  bool
		wantLeave bool
	}{
		{"joined sets join time only", ParticipantJoined, true, false},
		{"left sets leave time only", ParticipantLeft, false, true},
		{"unknown kind sets neither", ParticipantEventKind("moved"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := ts.Add(time.Hour)
			event := &ParticipantEvent{EventKind: tt.kind, JoinTime: &other, LeaveTime: &other}
			event.SetEventTime(&ts)

			assert.Equal(t, tt.wantJoin, event.JoinTime != nil)
			assert.Equal(t, tt.wantLeave, event.LeaveTime != nil)
			assert.False(t, event.JoinTime != nil && event.LeaveTime != nil)
		})
	}
}

func TestParticipantEvent_JSONOmitsAbsentFields(t *testing.T) {
	event := ParticipantEvent{
		UID:             "uid-1",
		MeetingID:       "555",
		EventKind:       ParticipantLeft,
		ParticipantRole: RoleStudent,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "join_time")
	assert.NotContains(t, decoded, "participant_email")
	assert.Equal(t, "left", decoded["event_kind"])
	assert.Equal(t, "student", decoded["participant_role"])
}
