// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package role resolves the organizational role of a meeting participant.
package role

import (
	"context"
	"log/slog"
	"strings"

	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-zoom-ingest-service/pkg/redaction"
)

// Zoom participant role tags that always resolve to a teacher.
const (
	zoomRoleHost   = "host"
	zoomRoleCoHost = "co-host"
)

// Descriptor is the participant information available for role resolution.
type Descriptor struct {
	// Role is the role tag reported by Zoom, e.g. "host", "co-host", "attendee".
	Role        string
	Email       string
	DisplayName string
}

// Resolver maps a participant onto a models.ParticipantRole. The directory
// is queried on every call.
type Resolver struct {
	directory domain.IdentityDirectory
}

// NewResolver creates a Resolver backed by directory. A nil directory makes
// every non-host participant a student.
func NewResolver(directory domain.IdentityDirectory) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve walks the fallback chain: Zoom host tag, directory email match,
// directory display name match, then the default role. It always returns a role.
func (r *Resolver) Resolve(ctx context.Context, d Descriptor) models.ParticipantRole {
	if IsHostTag(d.Role) {
		return models.RoleTeacher
	}

	if r.directory == nil {
		return models.DefaultParticipantRole
	}

	if email := strings.TrimSpace(d.Email); email != "" {
		identity, err := r.directory.LookupIdentityByEmail(ctx, email)
		if role, ok := r.roleFrom(ctx, identity, err, "email", redaction.RedactEmail(email)); ok {
			return role
		}
	}

	if name := strings.TrimSpace(d.DisplayName); name != "" {
		identity, err := r.directory.LookupIdentityByDisplayName(ctx, name)
		if role, ok := r.roleFrom(ctx, identity, err, "display_name", redaction.Redact(name)); ok {
			return role
		}
	}

	return models.DefaultParticipantRole
}

func (r *Resolver) roleFrom(ctx context.Context, identity *models.InternalIdentity, err error, by, key string) (models.ParticipantRole, bool) {
	if err != nil {
		if !domain.IsNotFound(err) {
			slog.WarnContext(ctx, "identity directory lookup failed, falling through",
				"lookup_by", by,
				"lookup_key", key,
				logging.ErrKey, err,
			)
		}
		return "", false
	}

	role, ok := identity.ResolvedRole()
	if !ok {
		slog.DebugContext(ctx, "identity found without a usable role",
			"lookup_by", by,
			"lookup_key", key,
		)
	}
	return role, ok
}

// IsHostTag reports whether a Zoom role tag marks the meeting host or a co-host.
func IsHostTag(tag string) bool {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case zoomRoleHost, zoomRoleCoHost:
		return true
	}
	return false
}
