// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// RawAuditRecord is the unconditional copy of one non-challenge webhook call.
// Redelivered calls produce additional rows; UID carries no dedup meaning.
type RawAuditRecord struct {
	UID               string         `json:"uid"`
	EventKind         string         `json:"event_kind"`
	ExternalMeetingID *string        `json:"external_meeting_id,omitempty"`
	AccountIdentifier *string        `json:"account_identifier,omitempty"`
	Payload           map[string]any `json:"payload"`
	ReceivedAt        time.Time      `json:"received_at"`
}
