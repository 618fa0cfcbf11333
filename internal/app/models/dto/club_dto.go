package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
)

// CreateClubRequest represents a new club
type CreateClubRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=100"`
	Description string `json:"description" binding:"max=2000"`
	Location    string `json:"location" binding:"max=200"`
	Category    string `json:"category" binding:"max=100"`
	Subject     string `json:"subject" binding:"max=100"`
	Interest    string `json:"interest" binding:"max=100"`
}

// Club converts the request
func (r CreateClubRequest) Club() models.Club {
	return models.Club{
		Name:        r.Name,
		Description: r.Description,
		Location:    r.Location,
		Category:    r.Category,
		Subject:     r.Subject,
		Interest:    r.Interest,
	}
}

// UpdateClubRequest carries club edits, absent fields stay unchanged
type UpdateClubRequest struct {
	Name        *string `json:"name" binding:"omitempty,notblank,max=100"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Location    *string `json:"location" binding:"omitempty,max=200"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
	Subject     *string `json:"subject" binding:"omitempty,max=100"`
	Interest    *string `json:"interest" binding:"omitempty,max=100"`
}

// Patch converts the request
func (r UpdateClubRequest) Patch() models.ClubPatch {
	return models.ClubPatch{
		Name:        r.Name,
		Description: r.Description,
		Location:    r.Location,
		Category:    r.Category,
		Subject:     r.Subject,
		Interest:    r.Interest,
	}
}

// ClubFilterRequest holds club search parameters
type ClubFilterRequest struct {
	Name       string `form:"name"`
	Category   string `form:"category"`
	Interest   string `form:"interest"`
	MinMembers *int   `form:"minMembers" binding:"omitempty,min=0"`
	MaxMembers *int   `form:"maxMembers" binding:"omitempty,min=0"`
}

// Filter converts the request
func (r ClubFilterRequest) Filter(offset, limit int) models.ClubFilter {
	return models.ClubFilter{
		Name:       r.Name,
		Category:   r.Category,
		Interest:   r.Interest,
		MinMembers: r.MinMembers,
		MaxMembers: r.MaxMembers,
		Page:       models.Page{Offset: offset, Limit: limit},
	}
}

// ChangeRoleRequest assigns a member a new role
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required,clubrole" example:"MODERATOR"`
}

// ClubResponse represents a club
type ClubResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Subject     string    `json:"subject"`
	Interest    string    `json:"interest"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	Members     int       `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewClubResponse converts a club
func NewClubResponse(c *models.Club, url ObjectURL) ClubResponse {
	return ClubResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Location:    c.Location,
		Category:    c.Category,
		Subject:     c.Subject,
		Interest:    c.Interest,
		AvatarURL:   url.Of(c.Avatar),
		Members:     c.Members,
		CreatedAt:   c.CreatedAt,
	}
}

// MemberResponse is one roster entry
type MemberResponse struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"userId"`
	Username  string      `json:"username"`
	AvatarURL *string     `json:"avatarUrl,omitempty"`
	Role      models.Role `json:"role"`
	JoinedAt  *time.Time  `json:"joinedAt,omitempty"`
}

// NewMemberResponse converts a roster entry
func NewMemberResponse(m models.MemberView, url ObjectURL) MemberResponse {
	return MemberResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		Username:  m.Username,
		AvatarURL: url.Of(m.Avatar),
		Role:      m.Role,
		JoinedAt:  m.JoinedAt,
	}
}
