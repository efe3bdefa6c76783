package resource

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError reports a draft that cannot be submitted. It is raised
// before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks a draft's struct tags and returns the first failure as a
// *ValidationError.
func Validate(draft any) error {
	err := validate.Struct(draft)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("resource: validate: %w", err)
	}
	fe := verrs[0]
	msg := fmt.Sprintf("%s is invalid", fe.Field())
	if fe.Tag() == "required" {
		msg = fmt.Sprintf("%s is required", fe.Field())
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
