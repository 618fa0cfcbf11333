package controllers

import (
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/websocket"
)

// PostController handles club posts
type PostController struct {
	posts        services.PostService
	interactions services.InteractionService
	activity     Publisher
	objectURL    dto.ObjectURL
	logger       zerolog.Logger
}

// NewPostController creates a new PostController
func NewPostController(posts services.PostService, interactions services.InteractionService, activity Publisher, objectURL dto.ObjectURL, logger zerolog.Logger) *PostController {
	return &PostController{posts: posts, interactions: interactions, activity: activity, objectURL: objectURL, logger: logger}
}

// respond writes a post without viewer flags.
func (c *PostController) respond(ctx *gin.Context, status int, post *models.Post, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(status, dto.NewSuccessResponse(dto.NewPostResponse(models.PostView{Post: *post}, c.objectURL)))
}

// Create publishes a post from a multipart form with a "content" field and an
// optional "picture" file
// @Summary Create post
// @Tags posts
// @Security BearerAuth
// @Accept multipart/form-data
// @Param content formData string false "Text"
// @Param picture formData file false "Picture"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse}
// @Router /clubs/{clubId}/posts [post]
func (c *PostController) Create(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	content := ctx.PostForm("content")
	if utf8.RuneCountInString(content) > 5000 {
		middleware.HandleAPIError(ctx, apperrors.Validation("content", "content must be at most 5000"))
		return
	}
	picture, ok := readUpload(ctx, "picture", false)
	if !ok {
		return
	}

	post, err := c.posts.Create(ctx.Request.Context(), userID, clubID, content, picture)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	resp := dto.NewPostResponse(models.PostView{Post: *post}, c.objectURL)
	c.activity.Publish(clubID, userID, websocket.ActivityPostCreated, resp)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(resp))
}

// ListByClub lists a club's posts, newest first
func (c *PostController) ListByClub(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	p := page(ctx)
	views, err := c.posts.ListByClub(ctx.Request.Context(), userID, clubID, p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	posts := dto.Map(views, func(v models.PostView) dto.PostResponse { return dto.NewPostResponse(v, c.objectURL) })
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(posts, p.Offset, p.Limit)))
}

// Get returns one post with the caller's flags
func (c *PostController) Get(ctx *gin.Context) {
	userID, postID, ok := caller(ctx, "postId")
	if !ok {
		return
	}
	view, err := c.posts.Get(ctx.Request.Context(), userID, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewPostResponse(*view, c.objectURL)))
}

// Update edits a post's text
func (c *PostController) Update(ctx *gin.Context) {
	userID, postID, ok := caller(ctx, "postId")
	if !ok {
		return
	}
	var req dto.UpdatePostRequest
	if !bindJSON(ctx, &req) {
		return
	}
	post, err := c.posts.Update(ctx.Request.Context(), userID, postID, models.PostPatch{Content: req.Content})
	c.respond(ctx, http.StatusOK, post, err)
}

// UpdatePicture replaces the picture from the multipart field "picture"
func (c *PostController) UpdatePicture(ctx *gin.Context) {
	userID, postID, ok := caller(ctx, "postId")
	if !ok {
		return
	}
	upload, ok := readUpload(ctx, "picture", true)
	if !ok {
		return
	}
	post, err := c.posts.UpdatePicture(ctx.Request.Context(), userID, postID, *upload)
	c.respond(ctx, http.StatusOK, post, err)
}

// DeletePicture removes the picture, keeping the post
func (c *PostController) DeletePicture(ctx *gin.Context) {
	userID, postID, ok := caller(ctx, "postId")
	if !ok {
		return
	}
	post, err := c.posts.DeletePicture(ctx.Request.Context(), userID, postID)
	c.respond(ctx, http.StatusOK, post, err)
}

// Delete removes a post with its comments and interactions
func (c *PostController) Delete(ctx *gin.Context) {
	userID, postID, ok := caller(ctx, "postId")
	if !ok {
		return
	}
	if err := c.posts.Delete(ctx.Request.Context(), userID, postID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Share counts a share of the post
func (c *PostController) Share(ctx *gin.Context) {
	userID, postID, ok := caller(ctx, "postId")
	if !ok {
		return
	}
	result, err := c.interactions.Share(ctx.Request.Context(), userID, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}
