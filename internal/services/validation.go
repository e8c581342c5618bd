package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"hajjumrahflow/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// validateStruct runs struct tags and returns the first failure as a ValidationError.
func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.InternalError{Msg: "validation failed", Err: err}
	}
	fe := verrs[0]
	return domain.ValidationError{Field: fe.Field(), Code: fe.Tag(), Msg: fieldMessage(fe)}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: This field is required.", fe.Field())
	case "email":
		return fmt.Sprintf("%s: Enter a valid email address.", fe.Field())
	case "max":
		return fmt.Sprintf("%s: Ensure this field has no more than %s characters.", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s: Ensure this value is greater than %s.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s: Invalid value.", fe.Field())
	}
}

func nowOr(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
