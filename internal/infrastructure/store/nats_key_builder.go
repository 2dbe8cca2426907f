// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
)

// Common key prefixes
const (
	// Entity prefixes
	KeyPrefixAudit       = "audit"
	KeyPrefixParticipant = "participant"
	KeyPrefixRecording   = "recording"
	KeyPrefixIdentity    = "identity"

	// Identity index prefixes
	KeyPrefixIdentityEmail = "email"
	KeyPrefixIdentityName  = "name"
)

// KeyBuilder provides utilities for building consistent NATS KV keys
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with an optional prefix
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{
		prefix: prefix,
	}
}

// EntityKey builds a key for an entity (e.g., "participant/uid-123")
func (kb *KeyBuilder) EntityKey(entityType, uid string) string {
	key := fmt.Sprintf("%s/%s", entityType, uid)
	return kb.applyPrefix(key, false)
}

// MeetingEntityKey builds a key grouping an entity under its Zoom meeting id
// (e.g., "recording/85746065432/uid-123"). The meeting id is encoded since
// it comes straight from the payload.
func (kb *KeyBuilder) MeetingEntityKey(entityType, meetingID, uid string) string {
	key := fmt.Sprintf("%s/%s/%s", entityType, meetingID, uid)
	return kb.applyPrefix(key, true)
}

// IdentityKey builds the encoded directory key for a lookup value
// (e.g., "identity/email/jane@example.com"). Values are matched case-insensitively.
func (kb *KeyBuilder) IdentityKey(indexType, value string) string {
	key := fmt.Sprintf("%s/%s/%s", KeyPrefixIdentity, indexType, strings.ToLower(strings.TrimSpace(value)))
	return kb.applyPrefix(key, true)
}

// applyPrefix adds the builder's prefix if one is set
func (kb *KeyBuilder) applyPrefix(key string, encode bool) string {
	var fullKey string
	if kb.prefix == "" {
		fullKey = key
	} else {
		fullKey = fmt.Sprintf("%s/%s", kb.prefix, key)
	}

	if encode {
		encodedKey, err := kb.EncodeKey(fullKey)
		if err != nil {
			slog.Error("error encoding key", logging.ErrKey, err, "key", fullKey)
			return fullKey
		}
		return encodedKey
	}
	return fullKey
}

// EncodeKey encodes a key for NATS KV store. Each path segment is base64url
// encoded without padding so the result only holds valid key characters.
// Based on https://github.com/ripienaar/encodedkv
//
// NATS limitations: https://docs.nats.io/nats-concepts/jetstream/key-value-store#notes
func (kb *KeyBuilder) EncodeKey(key string) (string, error) {
	res := []string{}
	for _, part := range strings.Split(strings.TrimPrefix(key, "/"), "/") {
		if part == "" {
			return "", nats.ErrInvalidKey
		}
		if part == ">" || part == "*" {
			res = append(res, part)
			continue
		}

		res = append(res, base64.RawURLEncoding.EncodeToString([]byte(part)))
	}

	return strings.Join(res, "."), nil
}

// DecodeKey reverses EncodeKey.
func (kb *KeyBuilder) DecodeKey(key string) (string, error) {
	if key == "" {
		return "", nats.ErrInvalidKey
	}

	res := []string{}
	for _, part := range strings.Split(key, ".") {
		k, err := base64.RawURLEncoding.DecodeString(part)
		if err != nil {
			return "", err
		}

		res = append(res, string(k))
	}

	return fmt.Sprintf("/%s", strings.Join(res, "/")), nil
}
