package router

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"gastos/internal/auth"
	"gastos/internal/config"
	apperrors "gastos/internal/errors"
	"gastos/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	txHandler *handler.TransactionHandler,
	ratesHandler *handler.RatesHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	e.POST("/registrar", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.GET("/converter-moeda", ratesHandler.Convert)

	// Secured routes (require a bearer session token)
	secured := e.Group("/transacoes", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: jwtErrorHandler,
	}))

	secured.GET("", txHandler.List)
	secured.POST("", txHandler.Create)
	secured.GET("/:id", txHandler.Get)
	secured.PUT("/:id", txHandler.Update)
	secured.DELETE("/:id", txHandler.Delete)
}

// jwtErrorHandler keeps the legacy status split: 401 when no token was
// presented, 403 when one was presented but failed validation.
func jwtErrorHandler(c echo.Context, err error) error {
	if errors.Is(err, echojwt.ErrJWTMissing) {
		return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
			Error: "no token provided",
			Code:  "MISSING_TOKEN",
		})
	}
	return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
		Error: "invalid or expired token",
		Code:  "INVALID_TOKEN",
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
