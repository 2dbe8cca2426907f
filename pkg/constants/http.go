// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// ZoomSignatureHeader carries the v0 HMAC signature of a Zoom webhook request
	ZoomSignatureHeader string = "x-zm-signature"

	// ZoomRequestTimestampHeader carries the unix timestamp used to build the signature
	ZoomRequestTimestampHeader string = "x-zm-request-timestamp"

	// ContentTypeHeader is the header name for the content type
	ContentTypeHeader string = "Content-Type"
)

// HTTP paths served by the ingest service
const (
	// ZoomWebhookPath is the endpoint registered with Zoom for event subscriptions
	ZoomWebhookPath = "/webhooks/zoom"

	// LivenessPath is the liveness probe endpoint
	LivenessPath = "/livez"

	// ReadinessPath is the readiness probe endpoint
	ReadinessPath = "/readyz"
)

// MaxWebhookBodyBytes bounds how much of a webhook body is read into memory.
const MaxWebhookBodyBytes int64 = 10 << 20

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"
