package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Club is the top-level community aggregate. Members counts the roster.
type Club struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Location    string     `json:"location" db:"location"`
	Category    string     `json:"category" db:"category"`
	Subject     string     `json:"subject" db:"subject"`
	Interest    string     `json:"interest" db:"interest"`
	Avatar      *ObjectRef `json:"avatar,omitempty"`
	Members     int        `json:"members" db:"members"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// Member binds a user to a club. JoinedAt is nil only for rows imported without one.
type Member struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	ClubID   uuid.UUID  `json:"clubId" db:"club_id"`
	UserID   uuid.UUID  `json:"userId" db:"user_id"`
	Role     Role       `json:"role" db:"role"`
	JoinedAt *time.Time `json:"joinedAt,omitempty" db:"joined_at"`
}

// ClubPatch carries the editable club fields; nil leaves a field unchanged.
type ClubPatch struct {
	Name        *string
	Description *string
	Location    *string
	Category    *string
	Subject     *string
	Interest    *string
}

// Apply copies the set fields onto c.
func (p ClubPatch) Apply(c *Club) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Name, p.Name)
	set(&c.Description, p.Description)
	set(&c.Location, p.Location)
	set(&c.Category, p.Category)
	set(&c.Subject, p.Subject)
	set(&c.Interest, p.Interest)
}

// ClubFilter narrows a club search. Empty strings and nil bounds match everything.
type ClubFilter struct {
	Name       string
	Category   string
	Interest   string
	MinMembers *int
	MaxMembers *int
	Page       Page
}

// Matches applies the filter to a single club, name/category/interest are
// case-insensitive substring matches.
func (f ClubFilter) Matches(c Club) bool {
	if !containsFold(c.Name, f.Name) || !containsFold(c.Category, f.Category) || !containsFold(c.Interest, f.Interest) {
		return false
	}
	if f.MinMembers != nil && c.Members < *f.MinMembers {
		return false
	}
	if f.MaxMembers != nil && c.Members > *f.MaxMembers {
		return false
	}
	return true
}

// MemberView is a roster entry with the member's public user fields.
type MemberView struct {
	Member
	Username string     `json:"username"`
	Avatar   *ObjectRef `json:"avatar,omitempty"`
}

func containsFold(s, sub string) bool {
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
