package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/websocket"
)

// ForumController handles forum threads and their replies
type ForumController struct {
	forum    services.ForumService
	activity Publisher
	logger   zerolog.Logger
}

// NewForumController creates a new ForumController
func NewForumController(forum services.ForumService, activity Publisher, logger zerolog.Logger) *ForumController {
	return &ForumController{forum: forum, activity: activity, logger: logger}
}

func reply[T any](ctx *gin.Context, status int, v T, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(status, dto.NewSuccessResponse(v))
}

func list[T any](ctx *gin.Context, p models.Page, items []T, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(items, p.Offset, p.Limit)))
}

// CreateThread opens a thread in the club forum
func (c *ForumController) CreateThread(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	var req dto.CreateThreadRequest
	if !bindJSON(ctx, &req) {
		return
	}
	thread, err := c.forum.CreateThread(ctx.Request.Context(), userID, clubID, req.Title, req.Content)
	if err == nil {
		c.activity.Publish(clubID, userID, websocket.ActivityThreadCreated, thread)
	}
	reply(ctx, http.StatusCreated, thread, err)
}

// ListThreads lists a club's threads, most recently active first
func (c *ForumController) ListThreads(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	p := page(ctx)
	threads, err := c.forum.ListThreads(ctx.Request.Context(), userID, clubID, p)
	list(ctx, p, threads, err)
}

// GetThread returns one thread with the caller's vote
func (c *ForumController) GetThread(ctx *gin.Context) {
	userID, threadID, ok := caller(ctx, "threadId")
	if !ok {
		return
	}
	thread, err := c.forum.GetThread(ctx.Request.Context(), userID, threadID)
	reply(ctx, http.StatusOK, thread, err)
}

// UpdateThread edits a thread, author only
func (c *ForumController) UpdateThread(ctx *gin.Context) {
	userID, threadID, ok := caller(ctx, "threadId")
	if !ok {
		return
	}
	var req dto.UpdateThreadRequest
	if !bindJSON(ctx, &req) {
		return
	}
	thread, err := c.forum.UpdateThread(ctx.Request.Context(), userID, threadID, models.ThreadPatch{Title: req.Title, Content: req.Content})
	reply(ctx, http.StatusOK, thread, err)
}

// DeleteThread removes a thread with its replies and comments
func (c *ForumController) DeleteThread(ctx *gin.Context) {
	userID, threadID, ok := caller(ctx, "threadId")
	if !ok {
		return
	}
	if err := c.forum.DeleteThread(ctx.Request.Context(), userID, threadID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// CreateReply answers a thread
func (c *ForumController) CreateReply(ctx *gin.Context) {
	userID, threadID, ok := caller(ctx, "threadId")
	if !ok {
		return
	}
	var req dto.ContentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	r, err := c.forum.CreateReply(ctx.Request.Context(), userID, threadID, req.Content)
	reply(ctx, http.StatusCreated, r, err)
}

// ListReplies lists a thread's replies, oldest first
func (c *ForumController) ListReplies(ctx *gin.Context) {
	userID, threadID, ok := caller(ctx, "threadId")
	if !ok {
		return
	}
	p := page(ctx)
	replies, err := c.forum.ListReplies(ctx.Request.Context(), userID, threadID, p)
	list(ctx, p, replies, err)
}

// UpdateReply edits a reply, author only
func (c *ForumController) UpdateReply(ctx *gin.Context) {
	userID, replyID, ok := caller(ctx, "replyId")
	if !ok {
		return
	}
	var req dto.ContentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	r, err := c.forum.UpdateReply(ctx.Request.Context(), userID, replyID, req.Content)
	reply(ctx, http.StatusOK, r, err)
}

// DeleteReply removes a reply
func (c *ForumController) DeleteReply(ctx *gin.Context) {
	userID, replyID, ok := caller(ctx, "replyId")
	if !ok {
		return
	}
	if err := c.forum.DeleteReply(ctx.Request.Context(), userID, replyID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
