package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// FeedController serves the caller's feed
type FeedController struct {
	feed      services.FeedService
	objectURL dto.ObjectURL
	logger    zerolog.Logger
}

// NewFeedController creates a new FeedController
func NewFeedController(feed services.FeedService, objectURL dto.ObjectURL, logger zerolog.Logger) *FeedController {
	return &FeedController{feed: feed, objectURL: objectURL, logger: logger}
}

// Feed returns posts and events from the caller's clubs created since they joined.
// Posts and events page independently.
// @Summary Get feed
// @Tags feed
// @Security BearerAuth
// @Param postOffset query int false "Post offset"
// @Param postLimit query int false "Post limit"
// @Param eventOffset query int false "Event offset"
// @Param eventLimit query int false "Event limit"
// @Success 200 {object} dto.APIResponse{data=dto.FeedResponse}
// @Router /feed [get]
func (c *FeedController) Feed(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	postOffset, postLimit := helpers.ParseWindow(ctx, "postOffset", "postLimit")
	eventOffset, eventLimit := helpers.ParseWindow(ctx, "eventOffset", "eventLimit")

	feed, err := c.feed.Feed(ctx.Request.Context(), userID,
		models.Page{Offset: postOffset, Limit: postLimit},
		models.Page{Offset: eventOffset, Limit: eventLimit})
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewFeedResponse(feed, c.objectURL)))
}
