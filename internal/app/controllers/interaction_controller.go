package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/services"
)

// InteractionController toggles likes, bookmarks, votes and attendance on
// /interactions/:kind/:id/:axis. PUT adds the caller, DELETE removes them; both
// are idempotent.
type InteractionController struct {
	interactions services.InteractionService
	logger       zerolog.Logger
}

// NewInteractionController creates a new InteractionController
func NewInteractionController(interactions services.InteractionService, logger zerolog.Logger) *InteractionController {
	return &InteractionController{interactions: interactions, logger: logger}
}

type toggleFunc func(ctx context.Context, actorID uuid.UUID, ref models.ResourceRef, axis models.Axis) (*models.InteractionResult, error)

// Add puts the caller into the axis set
func (c *InteractionController) Add(ctx *gin.Context) {
	c.toggle(ctx, c.interactions.Add)
}

// Remove takes the caller out of the axis set
func (c *InteractionController) Remove(ctx *gin.Context) {
	c.toggle(ctx, c.interactions.Remove)
}

// Unknown kinds and axes are rejected by the service.
func (c *InteractionController) toggle(ctx *gin.Context, fn toggleFunc) {
	userID, id, ok := caller(ctx, "id")
	if !ok {
		return
	}
	ref := models.ResourceRef{Kind: models.ResourceKind(ctx.Param("kind")), ID: id}
	result, err := fn(ctx.Request.Context(), userID, ref, models.Axis(ctx.Param("axis")))
	reply(ctx, http.StatusOK, result, err)
}
