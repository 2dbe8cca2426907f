// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package webhook

import (
	"log/slog"
)

// NoopSignatureValidator accepts every request. It is used when
// ZOOM_WEBHOOK_VERIFY_SIGNATURE is off.
type NoopSignatureValidator struct{}

// NewNoopSignatureValidator creates a validator that never rejects a request
func NewNoopSignatureValidator() *NoopSignatureValidator {
	return &NoopSignatureValidator{}
}

// ValidateSignature always returns nil
func (m *NoopSignatureValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	slog.Debug("webhook signature verification disabled, skipping")
	return nil
}
