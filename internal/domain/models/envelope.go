// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

// InboundEnvelope is the raw body of one Zoom webhook call.
// It is never mutated after decoding and lives for a single request.
type InboundEnvelope struct {
	Event   string         `json:"event"`
	EventTS any            `json:"event_ts,omitempty"`
	Payload map[string]any `json:"payload"`
}

// ValidationChallenge is the response to an endpoint.url_validation event.
type ValidationChallenge struct {
	PlainToken     string `json:"plainToken"`
	EncryptedToken string `json:"encryptedToken"`
}

// WebhookAck is the acknowledgment body returned for every non-challenge call.
type WebhookAck struct {
	Status string `json:"status"`
}

// WebhookResponse is what the ingest pipeline hands back to the HTTP layer.
// Exactly one of Challenge and Ack is set.
type WebhookResponse struct {
	Challenge *ValidationChallenge
	Ack       *WebhookAck
}

// Body returns the value that should be JSON encoded to the caller.
func (r *WebhookResponse) Body() any {
	if r == nil {
		return nil
	}
	if r.Challenge != nil {
		return r.Challenge
	}
	return r.Ack
}
