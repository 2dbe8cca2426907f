// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "strings"

// ParticipantRole is the organizational role attached to a normalized record.
type ParticipantRole string

// ParticipantRole values.
const (
	RoleTeacher ParticipantRole = "teacher"
	RoleSales   ParticipantRole = "sales"
	RoleStudent ParticipantRole = "student"
	// RoleSystem is attached to recording artifacts, never to people.
	RoleSystem ParticipantRole = "system"

	// DefaultParticipantRole is used when no signal resolves a stronger role.
	DefaultParticipantRole = RoleStudent
)

// String returns the role as stored.
func (r ParticipantRole) String() string {
	return string(r)
}

// IsValid reports whether r is one of the known roles.
func (r ParticipantRole) IsValid() bool {
	switch r {
	case RoleTeacher, RoleSales, RoleStudent, RoleSystem:
		return true
	}
	return false
}

// ParseDirectoryRole normalizes a role read from the identity directory.
// Only person roles are accepted; blank, unknown and system values report false.
func ParseDirectoryRole(raw string) (ParticipantRole, bool) {
	role := ParticipantRole(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleTeacher, RoleSales, RoleStudent:
		return role, true
	}
	return "", false
}

// InternalIdentity is one entry of the internal roster. The ingest service
// only reads it; the roster is maintained elsewhere.
type InternalIdentity struct {
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        string  `json:"role,omitempty"`
}

// ResolvedRole returns the identity's role if it is a usable person role.
func (i *InternalIdentity) ResolvedRole() (ParticipantRole, bool) {
	if i == nil {
		return "", false
	}
	return ParseDirectoryRole(i.Role)
}
