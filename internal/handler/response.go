package handler

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"onboarding/internal/auth"
	"onboarding/internal/errors"
)

// ContextKeyUser is where the JWT middleware stores the parsed token.
const ContextKeyUser = "user"

func ok(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, errors.Response{Success: true, Data: data, Message: message})
}

// fail writes err as a failure envelope. A RequiresConfirmationError is a
// deferred decision and goes out as 200 with requiresConfirmation set.
func fail(c echo.Context, err error) error {
	var confirm *errors.RequiresConfirmationError
	if errors.As(err, &confirm) {
		return c.JSON(http.StatusOK, errors.ConfirmationResponse{
			Success:              false,
			RequiresConfirmation: true,
			Message:              confirm.Error(),
			ExistingData:         confirm.Existing,
		})
	}

	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return c.JSON(httpErr.StatusCode, httpErr.ToResponse())
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.NewValidationError("", "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field := verrs[0]
			return errors.NewValidationError(lowerFirst(field.Field()), "failed on '"+field.Tag()+"'")
		}
		return errors.NewValidationError("", err.Error())
	}
	return nil
}

// currentClaims returns the claims of the authenticated request.
func currentClaims(c echo.Context) (*auth.Claims, error) {
	token, isToken := c.Get(ContextKeyUser).(*jwt.Token)
	if !isToken {
		return nil, errors.ErrUnauthorized
	}
	claims, isClaims := token.Claims.(*auth.Claims)
	if !isClaims {
		return nil, errors.ErrUnauthorized
	}
	return claims, nil
}

// currentIdentity returns the authenticated caller.
func currentIdentity(c echo.Context) (auth.Identity, error) {
	claims, err := currentClaims(c)
	if err != nil {
		return auth.Identity{}, err
	}
	id, err := claims.Identity()
	if err != nil {
		return auth.Identity{}, errors.ErrUnauthorized
	}
	return id, nil
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.NewValidationError(name, "must be a uuid")
	}
	return id, nil
}

// optionalUUID parses an optional body field; empty means absent.
func optionalUUID(field, raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.NewValidationError(field, "must be a uuid")
	}
	return &id, nil
}

// requestOrigin is the scheme and host the client used to reach us.
func requestOrigin(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
