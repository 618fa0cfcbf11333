package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParseWindow reads an offset/limit pair from the query string under the given
// names. Missing or invalid values fall back to 0 and DefaultPageSize, limits are
// capped at MaxPageSize.
func ParseWindow(c *gin.Context, offsetKey, limitKey string) (offset, limit int) {
	offset, err := strconv.Atoi(c.DefaultQuery(offsetKey, "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	limit, err = strconv.Atoi(c.DefaultQuery(limitKey, strconv.Itoa(DefaultPageSize)))
	if err != nil || limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return offset, limit
}

// ParsePaginationParams is ParseWindow with the common offset/limit names.
func ParsePaginationParams(c *gin.Context) (offset, limit int) {
	return ParseWindow(c, "offset", "limit")
}

// OptionalInt parses an optional integer query parameter.
func OptionalInt(c *gin.Context, key string) (*int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
