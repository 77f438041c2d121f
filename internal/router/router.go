package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"onboarding/internal/auth"
	"onboarding/internal/config"
	"onboarding/internal/errors"
	"onboarding/internal/handler"
	"onboarding/internal/logger"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log zerolog.Logger,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	templateHandler *handler.TemplateHandler,
	resourceHandler *handler.ResourceHandler,
	versionHandler *handler.VersionHandler,
	shareHandler *handler.ShareHandler,
) {
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger(log))
	e.Use(logger.ContextLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.GET("/templates/shared/:token", shareHandler.Resolve)

	// Secured routes (require JWT authentication)
	secured := api.Group("",
		echojwt.WithConfig(echojwt.Config{
			SigningKey:  []byte(cfg.JWTSecret),
			TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
			ContextKey:  handler.ContextKeyUser,
			NewClaimsFunc: func(echo.Context) jwt.Claims {
				return new(auth.Claims)
			},
			ErrorHandler: func(c echo.Context, err error) error {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			},
		}),
		rejectRevoked(tokenStore),
	)

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/auth/verify", authHandler.Verify)
	secured.DELETE("/auth/delete-account", authHandler.DeleteAccount)
	secured.POST("/users", userHandler.UpdateProfile)

	// Sharing routes are registered before /templates/:userId.
	secured.POST("/templates/share", shareHandler.Issue)
	secured.POST("/templates/clone/:token", shareHandler.Clone)
	secured.DELETE("/templates/share/:shareId", shareHandler.Revoke)
	secured.GET("/templates/share/:shareId/clones", shareHandler.CloneLogs)
	secured.GET("/templates/my-shares/:userId", shareHandler.ListMine)

	// Checklist routes
	secured.GET("/templates/:userId", templateHandler.List)
	secured.POST("/templates", templateHandler.Create)
	secured.PUT("/templates/:id", templateHandler.Update)
	secured.DELETE("/templates/:id", templateHandler.Delete)

	// Resource library routes
	secured.GET("/jtbd/:userId", resourceHandler.List)
	secured.POST("/jtbd", resourceHandler.CreateCategory)
	secured.POST("/jtbd/:categoryId/resources", resourceHandler.AddResource)
	secured.DELETE("/jtbd/resources/:id", resourceHandler.DeleteResource)
	secured.DELETE("/jtbd/:id", resourceHandler.DeleteCategory)

	// Version routes
	secured.GET("/versions", versionHandler.List)
	secured.POST("/versions", versionHandler.Create)
	secured.PUT("/versions/:id/default", versionHandler.SetDefault)
	secured.DELETE("/versions/:id", versionHandler.Delete)
}

// rejectRevoked refuses access tokens that were blacklisted at logout.
func rejectRevoked(tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(handler.ContextKeyUser).(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token")
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok || claims.ID == "" {
				return next(c)
			}
			revoked, err := tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err == nil && revoked {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
			}
			return next(c)
		}
	}
}

// errorHandler renders errors that escape handlers in the response envelope.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	resp := errors.Response{Success: false, Error: "internal server error", Code: "INTERNAL_ERROR"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		resp.Error = http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok {
			resp.Error = msg
		}
		switch status {
		case http.StatusUnauthorized:
			resp.Code = "UNAUTHORIZED"
		case http.StatusNotFound:
			resp.Code = "NOT_FOUND"
		case http.StatusMethodNotAllowed:
			resp.Code = "METHOD_NOT_ALLOWED"
		default:
			if status < http.StatusInternalServerError {
				resp.Code = "BAD_REQUEST"
			}
		}
	} else {
		httpErr := errors.MapErrorToHTTP(err)
		status = httpErr.StatusCode
		resp = httpErr.ToResponse()
	}

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("unhandled error")
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, resp)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
