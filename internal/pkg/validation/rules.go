package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/clubhub/internal/app/models"
)

// PreferencePattern matches one preference tag, e.g. "chess" or "board-games".
var PreferencePattern = `^[\p{L}\p{N}][\p{L}\p{N} _\-]{0,39}$`

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Preference *regexp.Regexp
}{
	Preference: regexp.MustCompile(PreferencePattern),
}

// Register adds the custom tags to v:
//
//	clubrole   - ADMIN, MODERATOR or MEMBER, any case
//	notblank   - non-empty after trimming spaces
//	preference - a single preference tag
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"clubrole":   clubRole,
		"notblank":   notBlank,
		"preference": preference,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func clubRole(fl validator.FieldLevel) bool {
	_, err := models.ParseRole(fl.Field().String())
	return err == nil
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func preference(fl validator.FieldLevel) bool {
	return CompiledPatterns.Preference.MatchString(strings.TrimSpace(fl.Field().String()))
}
