package router

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"taskmanager/internal/access"
	"taskmanager/internal/auth"
	apperrors "taskmanager/internal/errors"
	"taskmanager/internal/handler"
	"taskmanager/internal/service"
)

// Deps collects what Register wires into routes.
type Deps struct {
	Log           *slog.Logger
	MaxUploadSize string

	JWTService  *auth.JWTService
	AuthService service.AuthService

	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	TaskHandler     *handler.TaskHandler
	DocumentHandler *handler.DocumentHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(middleware.Recover())
	if d.MaxUploadSize != "" {
		e.Use(middleware.BodyLimit(d.MaxUploadSize))
	}

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", d.AuthHandler.Register)
	api.POST("/auth/login", d.AuthHandler.Login)
	api.POST("/auth/refresh", d.AuthHandler.Refresh)
	api.POST("/auth/logout", d.AuthHandler.Logout)

	// Secured routes (require a bearer token)
	secured := api.Group("", Authenticate(d.JWTService), LoadPrincipal(d.AuthService))

	secured.GET("/auth/me", d.AuthHandler.Me)
	secured.PUT("/auth/make-admin/:id", d.AuthHandler.MakeAdmin, RequirePermission(access.PermManageRoles))

	// Admin routes
	secured.GET("/users", d.UserHandler.ListUsers, RequirePermission(access.PermListUsers))
	secured.PUT("/users/:id/role", d.UserHandler.UpdateRole, RequirePermission(access.PermManageRoles))
	secured.GET("/users/:id/tasks", d.UserHandler.UserTasks, RequirePermission(access.PermListUserTasks))

	// Task routes
	secured.GET("/tasks", d.TaskHandler.ListTasks)
	secured.POST("/tasks", d.TaskHandler.CreateTask)
	secured.GET("/tasks/file/:fileName", d.DocumentHandler.Download)
	secured.GET("/tasks/:id", d.TaskHandler.GetTask)
	secured.PUT("/tasks/:id", d.TaskHandler.UpdateTask)
	secured.DELETE("/tasks/:id", d.TaskHandler.DeleteTask)
	secured.POST("/tasks/:id/upload", d.DocumentHandler.Upload)
}

func errorResponse(err error) *echo.HTTPError {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// Authenticate verifies the bearer token with the token service. Every
// failure, including a missing header, yields the same 401 body.
func Authenticate(jwtService *auth.JWTService) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return jwtService.Verify(token)
		},
		ErrorHandler: func(_ echo.Context, _ error) error {
			return errorResponse(apperrors.ErrUnauthenticated)
		},
	})
}

// LoadPrincipal resolves the verified identity to a stored user.
func LoadPrincipal(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := c.Get("user").(auth.Identity)
			if !ok {
				return errorResponse(apperrors.ErrUnauthenticated)
			}
			p, err := authService.Principal(c.Request().Context(), identity)
			if err != nil {
				return errorResponse(err)
			}
			handler.SetPrincipal(c, p)
			return next(c)
		}
	}
}

// RequirePermission rejects callers lacking perm before the handler runs.
func RequirePermission(perm access.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := handler.PrincipalFrom(c)
			if !ok {
				return errorResponse(apperrors.ErrUnauthenticated)
			}
			if err := access.Authorize(p, perm); err != nil {
				return errorResponse(err)
			}
			return next(c)
		}
	}
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = slog.Default()
	}
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				log.LogAttrs(c.Request().Context(), slog.LevelWarn, "request", slog.Group("http", attrs...), slog.String("error", v.Error.Error()))
				return nil
			}
			log.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", slog.Group("http", attrs...))
			return nil
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
