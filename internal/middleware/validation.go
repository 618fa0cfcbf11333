package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/clubhub/internal/app/models/dto"
	"github.com/yigit/clubhub/internal/pkg/validation"
)

// RegisterValidators installs the custom binding tags on gin's validator and
// makes field errors report JSON names.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin validator engine is not go-playground/validator")
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return validation.Register(v)
}

// HandleBindError answers a request whose body or query failed to bind.
func HandleBindError(c *gin.Context, err error) {
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request").
		WithSeverity(dto.ErrorSeverityWarning)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		errorDetail.WithField(first.Field()).WithDetails(formatValidationError(first))
		for _, fe := range verrs[1:] {
			errorDetail.WithParam(fe.Field(), formatValidationError(fe))
		}
	} else {
		errorDetail.WithDetails("Malformed request body.")
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "notblank":
		return e.Field() + " must not be blank"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "clubrole":
		return e.Field() + " must be one of: ADMIN, MODERATOR, MEMBER"
	case "preference":
		return e.Field() + " must be a short word or phrase"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
