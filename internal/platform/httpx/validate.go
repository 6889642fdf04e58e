package httpx

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"pawpals/internal/platform/apperr"

	gpvalidator "github.com/go-playground/validator/v10"
)

var (
	v    *gpvalidator.Validate
	once sync.Once
)

func validator() *gpvalidator.Validate {
	once.Do(func() {
		v = gpvalidator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
	return v
}

// ValidateStruct valida s y devuelve un apperr de validación legible.
func ValidateStruct(s any) error {
	err := validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs gpvalidator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Validation(describe(verrs[0]))
	}
	return apperr.Validation("invalid input")
}

func describe(fe gpvalidator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "latitude", "longitude":
		return fmt.Sprintf("%s must be a valid %s", fe.Field(), fe.Tag())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
