// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/constants"
)

// ParticipantEventKind is the normalized kind of a participant event.
type ParticipantEventKind string

// ParticipantEventKind values.
const (
	ParticipantJoined ParticipantEventKind = "joined"
	ParticipantLeft   ParticipantEventKind = "left"
)

// ParticipantEventKindFromZoom maps a Zoom event name onto a participant event kind.
func ParticipantEventKindFromZoom(event string) (ParticipantEventKind, bool) {
	switch event {
	case constants.ZoomEventParticipantJoined:
		return ParticipantJoined, true
	case constants.ZoomEventParticipantLeft:
		return ParticipantLeft, true
	}
	return "", false
}

// ParticipantEvent is a normalized join or leave record.
// JoinTime is set only for joined events and LeaveTime only for left events.
type ParticipantEvent struct {
	UID              string               `json:"uid"`
	MeetingID        string               `json:"meeting_id"`
	MeetingUUID      *string              `json:"meeting_uuid,omitempty"`
	EventKind        ParticipantEventKind `json:"event_kind"`
	ParticipantName  *string              `json:"participant_name,omitempty"`
	ParticipantEmail *string              `json:"participant_email,omitempty"`
	ParticipantRole  ParticipantRole      `json:"participant_role"`
	JoinTime         *time.Time           `json:"join_time,omitempty"`
	LeaveTime        *time.Time           `json:"leave_time,omitempty"`
	Payload          map[string]any       `json:"payload"`
	CreatedAt        time.Time            `json:"created_at"`
}

// SetEventTime stores t in the time field that matches the event kind and
// clears the other one.
func (p *ParticipantEvent) SetEventTime(t *time.Time) {
	p.JoinTime, p.LeaveTime = nil, nil
	switch p.EventKind {
	case ParticipantJoined:
		p.JoinTime = t
	case ParticipantLeft:
		p.LeaveTime = t
	}
}
