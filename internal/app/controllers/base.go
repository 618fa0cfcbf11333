// Package controllers handles HTTP request handling
package controllers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/clubhub/internal/app/models"
	"github.com/yigit/clubhub/internal/app/services"
	"github.com/yigit/clubhub/internal/middleware"
	"github.com/yigit/clubhub/internal/pkg/apperrors"
	"github.com/yigit/clubhub/internal/pkg/helpers"
)

// MaxUploadSize caps avatars and post pictures.
const MaxUploadSize = 5 << 20

// Publisher pushes club activity to live subscribers.
type Publisher interface {
	Publish(clubID, actorID uuid.UUID, activityType string, payload any)
}

// currentUser returns the authenticated caller, answering 401 when there is none.
func currentUser(ctx *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.CurrentUserID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.Unauthenticated("Authentication required."))
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses a uuid path parameter, answering 400 when it is malformed.
func pathID(ctx *gin.Context, name string) (uuid.UUID, bool) {
	raw := ctx.Param(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.Validation(name, "Invalid "+name+" format.").WithParam(name, raw))
		return uuid.Nil, false
	}
	return id, true
}

// caller combines currentUser and pathID, the prologue of most handlers.
func caller(ctx *gin.Context, param string) (userID, id uuid.UUID, ok bool) {
	if userID, ok = currentUser(ctx); !ok {
		return
	}
	id, ok = pathID(ctx, param)
	return
}

func bindJSON(ctx *gin.Context, obj any) bool {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		middleware.HandleBindError(ctx, err)
		return false
	}
	return true
}

func bindQuery(ctx *gin.Context, obj any) bool {
	if err := ctx.ShouldBindQuery(obj); err != nil {
		middleware.HandleBindError(ctx, err)
		return false
	}
	return true
}

func page(ctx *gin.Context) models.Page {
	offset, limit := helpers.ParsePaginationParams(ctx)
	return models.Page{Offset: offset, Limit: limit}
}

// readUpload reads a multipart file field. A missing optional file yields nil.
func readUpload(ctx *gin.Context, field string, required bool) (*services.Upload, bool) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile && !required {
			return nil, true
		}
		middleware.HandleAPIError(ctx, apperrors.Validation(field, "A file is required in the '"+field+"' field."))
		return nil, false
	}
	if fh.Size > MaxUploadSize {
		middleware.HandleAPIError(ctx, apperrors.Validation(field, "File is too large.").WithParam("maxBytes", "5242880"))
		return nil, false
	}
	data, err := readFile(fh)
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.Internal(err, "Failed to read upload."))
		return nil, false
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = http.DetectContentType(data)
	}
	return &services.Upload{Data: data, ContentType: contentType}, true
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, MaxUploadSize+1))
}
