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

// ClubController handles clubs and their rosters
type ClubController struct {
	membership services.MembershipService
	activity   Publisher
	objectURL  dto.ObjectURL
	logger     zerolog.Logger
}

// NewClubController creates a new ClubController
func NewClubController(membership services.MembershipService, activity Publisher, objectURL dto.ObjectURL, logger zerolog.Logger) *ClubController {
	return &ClubController{membership: membership, activity: activity, objectURL: objectURL, logger: logger}
}

func (c *ClubController) club(ctx *gin.Context, status int, club *models.Club, err error) {
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(status, dto.NewSuccessResponse(dto.NewClubResponse(club, c.objectURL)))
}

// Create creates a club with the caller as its first admin
// @Summary Create club
// @Tags clubs
// @Security BearerAuth
// @Param request body dto.CreateClubRequest true "Club"
// @Success 201 {object} dto.APIResponse{data=dto.ClubResponse}
// @Router /clubs [post]
func (c *ClubController) Create(ctx *gin.Context) {
	userID, ok := currentUser(ctx)
	if !ok {
		return
	}
	var req dto.CreateClubRequest
	if !bindJSON(ctx, &req) {
		return
	}
	club, err := c.membership.CreateWithAdmin(ctx.Request.Context(), userID, req.Club())
	if err == nil {
		c.logger.Info().Str("clubID", club.ID.String()).Str("userID", userID.String()).Msg("Club created")
	}
	c.club(ctx, http.StatusCreated, club, err)
}

// Search lists clubs matching name, category, interest and member bounds
// @Summary Search clubs
// @Tags clubs
// @Param name query string false "Name contains"
// @Param category query string false "Category contains"
// @Param interest query string false "Interest contains"
// @Param minMembers query int false "Minimum members"
// @Param maxMembers query int false "Maximum members"
// @Param offset query int false "Offset"
// @Param limit query int false "Limit"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[dto.ClubResponse]}
// @Router /clubs [get]
func (c *ClubController) Search(ctx *gin.Context) {
	var req dto.ClubFilterRequest
	if !bindQuery(ctx, &req) {
		return
	}
	p := page(ctx)
	clubs, total, err := c.membership.SearchClubs(ctx.Request.Context(), req.Filter(p.Offset, p.Limit))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	list := dto.NewListResponse(dto.Map(clubs, func(club models.Club) dto.ClubResponse {
		return dto.NewClubResponse(&club, c.objectURL)
	}), p.Offset, p.Limit)
	list.Pagination.Total = &total
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(list))
}

// Get returns one club
func (c *ClubController) Get(ctx *gin.Context) {
	clubID, ok := pathID(ctx, "clubId")
	if !ok {
		return
	}
	club, err := c.membership.GetClub(ctx.Request.Context(), clubID)
	c.club(ctx, http.StatusOK, club, err)
}

// Update edits club details, admins only
func (c *ClubController) Update(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	var req dto.UpdateClubRequest
	if !bindJSON(ctx, &req) {
		return
	}
	club, err := c.membership.UpdateClub(ctx.Request.Context(), userID, clubID, req.Patch())
	c.club(ctx, http.StatusOK, club, err)
}

// UpdateAvatar replaces the club avatar from the multipart field "avatar"
func (c *ClubController) UpdateAvatar(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	upload, ok := readUpload(ctx, "avatar", true)
	if !ok {
		return
	}
	club, err := c.membership.UpdateClubAvatar(ctx.Request.Context(), userID, clubID, *upload)
	c.club(ctx, http.StatusOK, club, err)
}

// Delete removes a club and everything in it, admins only
func (c *ClubController) Delete(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	if err := c.membership.DeleteClub(ctx.Request.Context(), userID, clubID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("clubID", clubID.String()).Str("userID", userID.String()).Msg("Club deleted")
	ctx.Status(http.StatusNoContent)
}

// Join adds the caller as a member
// @Summary Join club
// @Tags clubs
// @Security BearerAuth
// @Success 201 {object} dto.APIResponse{data=models.Member}
// @Failure 409 {object} dto.ErrorResponse "Already a member"
// @Router /clubs/{clubId}/join [post]
func (c *ClubController) Join(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	member, err := c.membership.Join(ctx.Request.Context(), clubID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.activity.Publish(clubID, userID, websocket.ActivityMemberJoined, member)
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(member))
}

// Leave removes the caller from the club
func (c *ClubController) Leave(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	if err := c.membership.Leave(ctx.Request.Context(), clubID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Members lists the roster
func (c *ClubController) Members(ctx *gin.Context) {
	clubID, ok := pathID(ctx, "clubId")
	if !ok {
		return
	}
	members, err := c.membership.ListMembers(ctx.Request.Context(), clubID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.Map(members, func(m models.MemberView) dto.MemberResponse {
		return dto.NewMemberResponse(m, c.objectURL)
	})))
}

// MyRole returns the caller's role, or null when not a member
func (c *ClubController) MyRole(ctx *gin.Context) {
	userID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	role, err := c.membership.RoleOf(ctx.Request.Context(), clubID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"role": role}))
}

// ChangeRole assigns a member a new role
// @Summary Change member role
// @Tags clubs
// @Security BearerAuth
// @Param request body dto.ChangeRoleRequest true "New role"
// @Success 200 {object} dto.APIResponse{data=models.Member}
// @Failure 403 {object} dto.ErrorResponse "Insufficient permissions"
// @Failure 409 {object} dto.ErrorResponse "Last admin"
// @Router /clubs/{clubId}/members/{memberId}/role [put]
func (c *ClubController) ChangeRole(ctx *gin.Context) {
	actorID, clubID, ok := caller(ctx, "clubId")
	if !ok {
		return
	}
	memberID, ok := pathID(ctx, "memberId")
	if !ok {
		return
	}
	var req dto.ChangeRoleRequest
	if !bindJSON(ctx, &req) {
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	member, err := c.membership.ChangeRole(ctx.Request.Context(), clubID, memberID, role, actorID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(member))
}
