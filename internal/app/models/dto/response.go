package dto

import (
	"time"

	"github.com/yigit/clubhub/internal/app/models"
)

// APIResponse wraps every successful payload
type APIResponse struct {
	Success   bool        `json:"success" example:"true"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewSuccessResponse wraps data in an APIResponse
func NewSuccessResponse(data interface{}) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// SuccessResponse is returned by operations without a payload
type SuccessResponse struct {
	Message string `json:"message"`
}

// PaginationInfo describes the window a list was cut from
type PaginationInfo struct {
	Offset int  `json:"offset"`
	Limit  int  `json:"limit"`
	Total  *int `json:"total,omitempty"`
}

// ListResponse is a paginated list
type ListResponse[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationInfo `json:"pagination"`
}

// NewListResponse builds a ListResponse, never with a nil Items slice.
func NewListResponse[T any](items []T, offset, limit int) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Pagination: PaginationInfo{Offset: offset, Limit: limit}}
}

// ObjectURL turns a stored object into a public URL
type ObjectURL func(bucket, key string) string

// Of returns the URL of ref, or nil when there is no object.
func (u ObjectURL) Of(ref *models.ObjectRef) *string {
	if ref == nil || u == nil {
		return nil
	}
	s := u(ref.Bucket, ref.Key)
	return &s
}

// Map converts a slice element by element
func Map[S, T any](in []S, fn func(S) T) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
