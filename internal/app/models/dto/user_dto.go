package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
)

// UserResponse is the public view of an account
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	Description string    `json:"description"`
	Subject     string    `json:"subject"`
	Preferences []string  `json:"preferences"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewUserResponse converts a user
func NewUserResponse(u *models.User, url ObjectURL) UserResponse {
	prefs := u.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		AvatarURL:   url.Of(u.Avatar),
		Description: u.Description,
		Subject:     u.Subject,
		Preferences: prefs,
		CreatedAt:   u.CreatedAt,
	}
}

// MembershipResponse is one club of a profile with the user's role in it
type MembershipResponse struct {
	Club     ClubResponse `json:"club"`
	Role     models.Role  `json:"role"`
	JoinedAt *time.Time   `json:"joinedAt,omitempty"`
}

// ProfileResponse is a user with derived counters
type ProfileResponse struct {
	User           UserResponse         `json:"user"`
	PostCount      int                  `json:"postCount"`
	EventsAttended int                  `json:"eventsAttended"`
	Memberships    []MembershipResponse `json:"memberships"`
}

// NewProfileResponse converts a profile
func NewProfileResponse(p *models.Profile, url ObjectURL) ProfileResponse {
	return ProfileResponse{
		User:           NewUserResponse(&p.User, url),
		PostCount:      p.PostCount,
		EventsAttended: p.EventsAttended,
		Memberships: Map(p.Memberships, func(m models.Membership) MembershipResponse {
			return MembershipResponse{
				Club:     NewClubResponse(&m.Club, url),
				Role:     m.Member.Role,
				JoinedAt: m.Member.JoinedAt,
			}
		}),
	}
}

// UpdateProfileRequest carries profile edits, absent fields stay unchanged
type UpdateProfileRequest struct {
	Username    *string   `json:"username" binding:"omitempty,notblank,max=50"`
	Description *string   `json:"description" binding:"omitempty,max=500"`
	Subject     *string   `json:"subject" binding:"omitempty,max=100"`
	Preferences *[]string `json:"preferences" binding:"omitempty,max=20,dive,preference"`
}

// Patch converts the request
func (r UpdateProfileRequest) Patch() models.UserPatch {
	return models.UserPatch{
		Username:    r.Username,
		Description: r.Description,
		Subject:     r.Subject,
		Preferences: r.Preferences,
	}
}
