package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// maxReportedProblems bounds the messages carried by one validation error so
// a broken 365-row import does not produce a 365-line response.
const maxReportedProblems = 10

var clockPattern = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// newValidator returns a validator that knows the prayer time tags and
// reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("clocktime", func(fl validator.FieldLevel) bool {
		return clockPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(domain.DateLayout, fl.Field().String())
		return err == nil
	})
	return v
}

// describe turns a validator error into short human messages.
func describe(err error) []string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(ves))
	for _, fe := range ves {
		switch fe.Tag() {
		case "required":
			out = append(out, fe.Field()+" is required")
		case "clocktime":
			out = append(out, fmt.Sprintf("%s must be a time of day (HH:MM), got %q", fe.Field(), fe.Value()))
		case "isodate":
			out = append(out, fmt.Sprintf("%s must be a date (YYYY-MM-DD), got %q", fe.Field(), fe.Value()))
		default:
			out = append(out, fe.Field()+" is invalid")
		}
	}
	return out
}

// validationError joins problems into one error wrapping domain.ErrValidation.
func validationError(problems []string) error {
	if len(problems) > maxReportedProblems {
		extra := len(problems) - maxReportedProblems
		problems = append(problems[:maxReportedProblems:maxReportedProblems], fmt.Sprintf("and %d more", extra))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
}
