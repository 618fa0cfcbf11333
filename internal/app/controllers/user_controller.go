package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
)

// UserController serves profiles and the caller's own account
type UserController struct {
	users     services.UserService
	feed      services.FeedService
	objectURL dto.ObjectURL
	logger    zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(users services.UserService, feed services.FeedService, objectURL dto.ObjectURL, logger zerolog.Logger) *UserController {
	return &UserController{users: users, feed: feed, objectURL: objectURL, logger: logger}
}

// Me returns the caller's profile
// @Summary Get own profile
// @Tags users
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse}
// @Router /users/me [get]
func (c *UserController) Me(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	c.respondProfile(ctx, userID)
}

// Profile returns another user's profile
func (c *UserController) Profile(ctx *gin.Context) {
	if _, ok := currentUser(ctx); !ok {
		return
	}
	userID, ok := pathID(ctx, "userId")
	if !ok {
		return
	}
	c.respondProfile(ctx, userID)
}

func (c *UserController) respondProfile(ctx *gin.Context, userID uuid.UUID) {
	profile, err := c.users.Profile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewProfileResponse(profile, c.objectURL)))
}

// UpdateMe edits the caller's profile
// @Summary Update own profile
// @Tags users
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Router /users/me [patch]
func (c *UserController) UpdateMe(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := c.users.UpdateProfile(ctx.Request.Context(), userID, req.Patch())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponse(user, c.objectURL)))
}

// UpdateAvatar replaces the caller's avatar from the multipart field "avatar"
func (c *UserController) UpdateAvatar(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	upload, ok := readUpload(ctx, "avatar", true)
	if !ok {
		return
	}

	user, err := c.users.UpdateAvatar(ctx.Request.Context(), userID, *upload)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewUserResponse(user, c.objectURL)))
}

// Bookmarks lists the posts the caller bookmarked, most recent bookmark first
func (c *UserController) Bookmarks(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	p := page(ctx)
	views, err := c.feed.BookmarkedPosts(ctx.Request.Context(), userID, p)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	posts := dto.Map(views, func(v models.PostView) dto.PostResponse { return dto.NewPostResponse(v, c.objectURL) })
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewListResponse(posts, p.Offset, p.Limit)))
}
