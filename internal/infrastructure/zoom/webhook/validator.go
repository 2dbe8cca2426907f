// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package webhook authenticates Zoom webhook calls: the one-time endpoint
// URL validation challenge and the per-request v0 signature.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/constants"
)

// ZoomWebhookValidator handles validation of Zoom webhook requests
type ZoomWebhookValidator struct {
	secretToken string
	tolerance   time.Duration
	now         func() time.Time
}

// Option configures a ZoomWebhookValidator.
type Option func(*ZoomWebhookValidator)

// WithTolerance sets how old a signed request timestamp may be. Zero disables the check.
func WithTolerance(d time.Duration) Option {
	return func(v *ZoomWebhookValidator) {
		v.tolerance = d
	}
}

// WithClock overrides the clock used for the timestamp tolerance check.
func WithClock(now func() time.Time) Option {
	return func(v *ZoomWebhookValidator) {
		v.now = now
	}
}

// NewZoomWebhookValidator creates a new Zoom webhook validator.
// An empty secret is a configuration error.
func NewZoomWebhookValidator(secretToken string, opts ...Option) (*ZoomWebhookValidator, error) {
	if strings.TrimSpace(secretToken) == "" {
		return nil, domain.ErrMissingSecret
	}

	v := &ZoomWebhookValidator{
		secretToken: secretToken,
		tolerance:   constants.DefaultZoomSignatureToleranceSeconds * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// IsChallenge reports whether event is the endpoint URL validation event.
func IsChallenge(event string) bool {
	return event == constants.ZoomEventURLValidation
}

// HandleChallenge answers an endpoint.url_validation event. A missing or
// non-string plainToken is hashed as the empty string.
func (v *ZoomWebhookValidator) HandleChallenge(body map[string]any) *models.ValidationChallenge {
	plainToken, _ := body["plainToken"].(string)

	return &models.ValidationChallenge{
		PlainToken:     plainToken,
		EncryptedToken: v.sign(plainToken),
	}
}

// ValidateSignature validates the x-zm-signature header of a Zoom webhook request
func (v *ZoomWebhookValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	if signature == "" {
		return domain.NewValidationError("missing webhook signature")
	}

	if timestamp == "" {
		return domain.NewValidationError("missing webhook timestamp")
	}

	if v.tolerance > 0 {
		seconds, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return domain.NewValidationError("invalid webhook timestamp", err)
		}
		age := v.now().Sub(time.Unix(seconds, 0))
		if age < 0 {
			age = -age
		}
		if age > v.tolerance {
			return fmt.Errorf("%w: %s old", domain.ErrStaleTimestamp, age.Truncate(time.Second))
		}
	}

	// The signed message is v0:{timestamp}:{body}
	message := fmt.Sprintf("%s:%s:%s", constants.ZoomSignatureVersion, timestamp, body)
	expectedSignature := constants.ZoomSignatureVersion + "=" + v.sign(message)

	if !hmac.Equal([]byte(signature), []byte(expectedSignature)) {
		return domain.ErrInvalidSignature
	}

	return nil
}

func (v *ZoomWebhookValidator) sign(message string) string {
	h := hmac.New(sha256.New, []byte(v.secretToken))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}
