package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\d{7,15}$`)

// New returns a validator that reports JSON field names and knows the
// portal's custom tags.
func New() *validator.Validate {
	v := validator.New()
	configure(v)
	return v
}

// RegisterGinValidator applies the same configuration to gin's binding engine.
func RegisterGinValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	return configure(v)
}

func configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("phonenumber", phoneNumberValidator); err != nil {
		return fmt.Errorf("register phonenumber validator: %w", err)
	}
	return nil
}

var phoneNumberValidator validator.Func = func(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

// Describe turns validation errors into one readable sentence. Missing fields
// are grouped first, the remaining problems follow.
func Describe(err error) string {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return err.Error()
	}
	missing := make([]string, 0)
	problems := make([]string, 0)
	for _, ferr := range verr {
		if ferr.Tag() == "required" {
			missing = append(missing, ferr.Field())
			continue
		}
		problems = append(problems, ferr.Field()+" "+msgForTag(ferr.Tag(), ferr.Param()))
	}
	parts := make([]string, 0, 2)
	if len(missing) > 0 {
		parts = append(parts, "Missing required fields: "+strings.Join(missing, ", "))
	}
	parts = append(parts, problems...)
	return strings.Join(parts, "; ")
}

// Fields lists the names of the fields that failed validation.
func Fields(err error) []string {
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return nil
	}
	out := make([]string, len(verr))
	for i, ferr := range verr {
		out[i] = ferr.Field()
	}
	return out
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", value)
	case "max":
		return fmt.Sprintf("must be at most %s characters", value)
	case "phonenumber":
		return "must contain 7 to 15 digits"
	}
	return "is invalid (" + tag + ")"
}
