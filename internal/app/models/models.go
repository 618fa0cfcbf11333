package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// Role is a club-scoped authorization level
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
	RoleMember    Role = "MEMBER"
)

// Roles lists every valid role, highest first.
var Roles = []Role{RoleAdmin, RoleModerator, RoleMember}

// ParseRole accepts role names case-insensitively and rejects anything else.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", apperrors.Validation("role", fmt.Sprintf("Unknown role %q, expected one of ADMIN, MODERATOR, MEMBER.", s)).
			WithParam("role", s)
	}
	return r, nil
}

// Valid reports whether r is one of the closed set of roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleMember:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ObjectRef points at a stored binary object (avatar, post picture).
type ObjectRef struct {
	Bucket string `json:"bucket" db:"bucket"`
	Key    string `json:"key" db:"key"`
	ETag   string `json:"etag" db:"etag"`
}

// Page is an offset/limit window. A non-positive limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

// Apply windows a slice that is already in display order.
func Apply[T any](items []T, p Page) []T {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Offset >= len(items) {
		return []T{}
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

// NewID returns a fresh random identifier.
func NewID() uuid.UUID {
	return uuid.New()
}
