package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/logger"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindUserNotMemberOfClub, apperrors.KindInsufficientPermissions:
		return http.StatusForbidden
	case apperrors.KindAlreadyMember, apperrors.KindNotAMember,
		apperrors.KindLastAdminLeave, apperrors.KindLastAdminRoleChange,
		apperrors.KindUserAlreadyExists:
		return http.StatusConflict
	case apperrors.KindInvalidCredentials, apperrors.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperrors.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandleAPIError writes err as an ErrorResponse with the status of its kind.
func HandleAPIError(c *gin.Context, err error) {
	var ce *apperrors.CustomError
	if !errors.As(err, &ce) {
		ce = apperrors.Internal(err, "An unexpected error occurred.")
	}

	detail := dto.FromAppError(ce)
	status := StatusFor(ce.Kind)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
		if gin.Mode() != gin.ReleaseMode {
			detail.WithDebugInfo("%v", err)
		}
	}
	_ = c.Error(err)
	c.JSON(status, dto.NewErrorResponse(detail))
}
