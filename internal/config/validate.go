package config

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var windowSizePattern = regexp.MustCompile(`^([1-9][0-9]*)x([1-9][0-9]*)$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(Key)
	_ = v.RegisterValidation("windowsize", func(fl validator.FieldLevel) bool {
		return windowSizePattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks opts and reports every invalid option in one error.
func Validate(opts Options) error {
	err := validate.Struct(opts)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating options: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid options: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s (got %v)", fe.Field(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s (got %q)", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a URL (got %q)", fe.Field(), fe.Value())
	case "windowsize":
		return fmt.Sprintf("%s must be WIDTHxHEIGHT (got %q)", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// Window parses the validated WIDTHxHEIGHT window size. ok is false when
// no size is set.
func (o Options) Window() (width, height int, ok bool) {
	m := windowSizePattern.FindStringSubmatch(o.WindowSize)
	if m == nil {
		return 0, 0, false
	}
	width, _ = strconv.Atoi(m[1])
	height, _ = strconv.Atoi(m[2])
	return width, height, true
}
