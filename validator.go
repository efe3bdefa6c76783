package adminpanel

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// requestValidator validates bound request structs for echo.
type requestValidator struct {
	validator *validator.Validate
}

func newValidator() *requestValidator {
	return &requestValidator{validator: validator.New()}
}

// Validate returns an HTTP 400 carrying the first failed field.
func (rv *requestValidator) Validate(i interface{}) error {
	err := rv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fmt.Sprintf("%s is invalid", fe.Field())
		if fe.Tag() == "required" {
			msg = fmt.Sprintf("%s is required", fe.Field())
		}
		return echo.NewHTTPError(http.StatusBadRequest, msg).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
}

// validationMessage is the user-facing text of a Validate failure.
func validationMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}
