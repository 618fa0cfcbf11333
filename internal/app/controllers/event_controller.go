package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/websocket"
)

// EventController handles club events
type EventController struct {
	events   services.EventService
	activity Publisher
	logger   zerolog.Logger
}

// NewEventController creates a new EventController
func NewEventController(events services.EventService, activity Publisher, logger zerolog.Logger) *EventController {
	return &EventController{events: events, activity: activity, logger: logger}
}

// Create schedules an event, admins and moderators only
func (c *EventController) Create(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	var req dto.EventRequest
	if !bindJSON(ctx, &req) {
		return
	}
	event, err := c.events.Create(ctx.Request.Context(), userID, clubID, req.Event())
	if err == nil {
		c.activity.Publish(clubID, userID, websocket.ActivityEventCreated, event)
	}
	reply(ctx, http.StatusCreated, event, err)
}

// ListByClub lists a club's events, newest first
func (c *EventController) ListByClub(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	p := page(ctx)
	events, err := c.events.ListByClub(ctx.Request.Context(), userID, clubID, p)
	list(ctx, p, events, err)
}

// Get returns one event with the caller's attendance
func (c *EventController) Get(ctx *gin.Context) {
	userID, eventID, ok := caller(ctx, "eventId")
	if !ok {
		return
	}
	event, err := c.events.Get(ctx.Request.Context(), userID, eventID)
	reply(ctx, http.StatusOK, event, err)
}

// Update edits an event
func (c *EventController) Update(ctx *gin.Context) {
	userID, eventID, ok := caller(ctx, "eventId")
	if !ok {
		return
	}
	var req dto.UpdateEventRequest
	if !bindJSON(ctx, &req) {
		return
	}
	event, err := c.events.Update(ctx.Request.Context(), userID, eventID, req.Patch())
	reply(ctx, http.StatusOK, event, err)
}

// Delete cancels and removes an event
func (c *EventController) Delete(ctx *gin.Context) {
	userID, eventID, ok := caller(ctx, "eventId")
	if !ok {
		return
	}
	if err := c.events.Delete(ctx.Request.Context(), userID, eventID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
