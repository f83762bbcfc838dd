package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"admissions/internal/auth"
	apperrors "admissions/internal/errors"
)

// ClaimsContextKey is where the echo-jwt middleware stores the parsed claims.
const ClaimsContextKey = "user"

func errorJSON(status int, message, code string, fields map[string][]string) *echo.HTTPError {
	return echo.NewHTTPError(status, apperrors.ErrorResponse{
		Error:  message,
		Code:   code,
		Fields: fields,
	})
}

func badRequest() *echo.HTTPError {
	return errorJSON(http.StatusBadRequest, "invalid request body", "INVALID_REQUEST", nil)
}

// validationFailed maps validator errors to per-field messages. Field names
// come from the json tags registered on the echo validator.
func validationFailed(err error) *echo.HTTPError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errorJSON(http.StatusBadRequest, err.Error(), "VALIDATION_FAILED", nil)
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
	}
	return errorJSON(http.StatusBadRequest, "validation failed", "VALIDATION_FAILED", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return "Must be at least " + fe.Param() + " characters."
	case "max":
		return "Must be at most " + fe.Param() + " characters."
	default:
		return "Invalid value."
	}
}

// claimsFrom returns the claims of the authenticated request.
func claimsFrom(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
	if !ok {
		return nil, errorJSON(http.StatusUnauthorized, "invalid token", "INVALID_TOKEN", nil)
	}
	return claims, nil
}

// mapError turns a domain error into the JSON error response.
func mapError(err error) *echo.HTTPError {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}
