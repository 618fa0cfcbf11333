package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered account
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Avatar       *ObjectRef `json:"avatar,omitempty"`
	Description  string     `json:"description" db:"description"`
	Preferences  []string   `json:"preferences" db:"preferences"`
	Subject      string     `json:"subject" db:"subject"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// Membership pairs a member row with the club it belongs to.
type Membership struct {
	Member Member `json:"member"`
	Club   Club   `json:"club"`
}

// Profile is the eager projection of a user with derived counters
type Profile struct {
	User           User         `json:"user"`
	PostCount      int          `json:"postCount"`
	EventsAttended int          `json:"eventsAttended"`
	Memberships    []Membership `json:"memberships"`
}

// UserPatch carries profile edits; nil leaves a field unchanged.
type UserPatch struct {
	Username    *string
	Description *string
	Subject     *string
	Preferences *[]string
}

// Apply copies the set fields onto u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Description != nil {
		u.Description = *p.Description
	}
	if p.Subject != nil {
		u.Subject = *p.Subject
	}
	if p.Preferences != nil {
		u.Preferences = normalizePreferences(*p.Preferences)
	}
}

// normalizePreferences trims entries and drops blanks and duplicates, keeping order.
func normalizePreferences(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
