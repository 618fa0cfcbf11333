package dto

import (
	"github.com/yigit/clubhub/internal/app/models"
)

// UpdatePostRequest edits a post's text. Posts are created from multipart forms,
// see PostController.Create.
type UpdatePostRequest struct {
	Content *string `json:"content" binding:"omitempty,max=5000"`
}

// ContentRequest is the body of comments and replies
type ContentRequest struct {
	Content string `json:"content" binding:"required,notblank,max=5000"`
}

// CreateThreadRequest opens a forum thread
type CreateThreadRequest struct {
	Title   string `json:"title" binding:"required,notblank,max=200"`
	Content string `json:"content" binding:"max=10000"`
}

// UpdateThreadRequest edits a thread, absent fields stay unchanged
type UpdateThreadRequest struct {
	Title   *string `json:"title" binding:"omitempty,notblank,max=200"`
	Content *string `json:"content" binding:"omitempty,max=10000"`
}

// EventRequest schedules an event
type EventRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Date        string `json:"date" binding:"max=50" example:"2024-03-15"`
	Time        string `json:"time" binding:"max=50" example:"19:00"`
	Location    string `json:"location" binding:"max=200"`
	Status      string `json:"status" binding:"max=50" example:"UPCOMING"`
}

// Event converts the request
func (r EventRequest) Event() models.Event {
	return models.Event{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		Location:    r.Location,
		Status:      r.Status,
	}
}

// UpdateEventRequest edits an event, absent fields stay unchanged
type UpdateEventRequest struct {
	Title       *string `json:"title" binding:"omitempty,notblank,max=200"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	Date        *string `json:"date" binding:"omitempty,max=50"`
	Time        *string `json:"time" binding:"omitempty,max=50"`
	Location    *string `json:"location" binding:"omitempty,max=200"`
	Status      *string `json:"status" binding:"omitempty,max=50"`
}

// Patch converts the request
func (r UpdateEventRequest) Patch() models.EventPatch {
	return models.EventPatch{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		Location:    r.Location,
		Status:      r.Status,
	}
}

// PostResponse is a post as the viewer sees it
type PostResponse struct {
	models.PostView
	PictureURL *string `json:"pictureUrl,omitempty"`
}

// NewPostResponse converts a post view
func NewPostResponse(p models.PostView, url ObjectURL) PostResponse {
	return PostResponse{PostView: p, PictureURL: url.Of(p.Picture)}
}

// FeedResponse is a user's feed
type FeedResponse struct {
	Posts  []PostResponse `json:"posts"`
	Events []models.Event `json:"events"`
}

// NewFeedResponse converts a feed
func NewFeedResponse(f *models.Feed, url ObjectURL) FeedResponse {
	events := f.Events
	if events == nil {
		events = []models.Event{}
	}
	return FeedResponse{
		Posts:  Map(f.Posts, func(p models.PostView) PostResponse { return NewPostResponse(p, url) }),
		Events: events,
	}
}
