package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
)

// Subscriber attaches a connection to a club's activity stream.
type Subscriber interface {
	Serve(w http.ResponseWriter, r *http.Request, clubID, userID uuid.UUID) error
}

// LiveController streams club activity over WebSocket
type LiveController struct {
	membership services.MembershipService
	hub        Subscriber
	logger     zerolog.Logger
}

// NewLiveController creates a new LiveController
func NewLiveController(membership services.MembershipService, hub Subscriber, logger zerolog.Logger) *LiveController {
	return &LiveController{membership: membership, hub: hub, logger: logger}
}

// Stream upgrades to a WebSocket that receives the club's new posts, threads,
// events and members. Members only.
// @Summary Club activity stream
// @Tags clubs, websocket
// @Security BearerAuth
// @Param clubId path string true "Club ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 403 {object} dto.ErrorResponse "Not a member"
// @Router /clubs/{clubId}/live [get]
func (c *LiveController) Stream(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	role, err := c.membership.RoleOf(ctx.Request.Context(), clubID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if role == nil {
		middleware.HandleAPIError(ctx, apperrors.NotMemberOfClub("Only members can follow club activity."))
		return
	}

	if err := c.hub.Serve(ctx.Writer, ctx.Request, clubID, userID); err != nil {
		c.logger.Warn().Err(err).Str("clubID", clubID.String()).Str("userID", userID.String()).Msg("WebSocket upgrade failed")
	}
}
