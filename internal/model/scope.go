package model

import "github.com/google/uuid"

// Scope selects which partition of a user's content a query touches.
type Scope struct {
	// All ignores version tags entirely.
	All bool
	// VersionID selects one version; nil (with All unset) selects
	// un-versioned legacy content.
	VersionID *uuid.UUID
}

// AllContent selects every item regardless of version.
func AllContent() Scope { return Scope{All: true} }

// Unversioned selects only items without a version tag.
func Unversioned() Scope { return Scope{} }

// InVersion selects items tagged with id.
func InVersion(id uuid.UUID) Scope { return Scope{VersionID: &id} }

// Matches reports whether an item tagged with versionID falls in the scope.
func (s Scope) Matches(versionID *uuid.UUID) bool {
	if s.All {
		return true
	}
	if s.VersionID == nil {
		return versionID == nil
	}
	return versionID != nil && *versionID == *s.VersionID
}
