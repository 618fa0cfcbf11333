package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// CommentController handles comments under posts and forum threads
type CommentController struct {
	comments services.CommentService
	logger   zerolog.Logger
}

// NewCommentController creates a new CommentController
func NewCommentController(comments services.CommentService, logger zerolog.Logger) *CommentController {
	return &CommentController{comments: comments, logger: logger}
}

// parent reads the commented resource from the path parameter param.
func parent(ctx *gin.Context, kind models.ResourceKind, param string) (models.ResourceRef, bool) {
	id, ok := pathID(ctx, param)
	return models.ResourceRef{Kind: kind, ID: id}, ok
}

// Create returns a handler adding a comment under the resource named by param
func (c *CommentController) Create(kind models.ResourceKind, param string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := currentUser(ctx)
		if !ok {
			return
		}
		ref, ok := parent(ctx, kind, param)
		if !ok {
			return
		}
		var req dto.ContentRequest
		if !bindJSON(ctx, &req) {
			return
		}
		comment, err := c.comments.Create(ctx.Request.Context(), userID, ref, req.Content)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(comment))
	}
}

// List returns a handler listing the comments of the resource named by param, oldest first
func (c *CommentController) List(kind models.ResourceKind, param string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := currentUser(ctx)
		if !ok {
			return
		}
		ref, ok := parent(ctx, kind, param)
		if !ok {
			return
		}
		p := page(ctx)
		views, err := c.comments.List(ctx.Request.Context(), userID, ref, p)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(views, p.Offset, p.Limit)))
	}
}

// Update edits a comment, author only
func (c *CommentController) Update(ctx *gin.Context) {
	userID, commentID, ok := caller(ctx, "commentId")
	if !ok {
		return
	}
	var req dto.ContentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	comment, err := c.comments.Update(ctx.Request.Context(), userID, commentID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(comment))
}

// Delete removes a comment
func (c *CommentController) Delete(ctx *gin.Context) {
	userID, commentID, ok := caller(ctx, "commentId")
	if !ok {
		return
	}
	if err := c.comments.Delete(ctx.Request.Context(), userID, commentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
