// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Zoom webhook event kinds handled by the ingest pipeline.
const (
	// ZoomEventURLValidation is the one-time endpoint registration challenge.
	ZoomEventURLValidation = "endpoint.url_validation"

	ZoomEventParticipantJoined  = "meeting.participant_joined"
	ZoomEventParticipantLeft    = "meeting.participant_left"
	ZoomEventRecordingCompleted = "recording.completed"
	ZoomEventRecordingStopped   = "recording.stopped"
)

// Zoom webhook signature settings
const (
	// ZoomSignatureVersion prefixes both the signed message and the header value.
	ZoomSignatureVersion = "v0"

	// DefaultZoomSignatureToleranceSeconds is how old a signed request may be.
	DefaultZoomSignatureToleranceSeconds = 300
)

// Acknowledgment statuses returned to Zoom.
const (
	StatusReceived = "received"
	StatusIgnored  = "ignored"
)
