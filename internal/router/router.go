package router

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"itongue/internal/config"
	"itongue/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	languageHandler *handler.LanguageHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	// Avatar addresses are relative to the public dir.
	e.Static("/public", cfg.PublicDir)

	api := e.Group("/api")

	// Public routes
	api.POST("/users", authHandler.Register)
	api.POST("/users/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/users", userHandler.List)
	api.GET("/users/:id", userHandler.GetByID)
	api.GET("/users/slug/:slug", userHandler.GetBySlug)
	api.GET("/languages", languageHandler.List)

	// Secured routes (require a valid access token)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.AccessTokenSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	secured.PUT("/users/:id", userHandler.UpdateProfile, ownerOrAdmin)
	secured.PUT("/users/:id/slug", userHandler.UpdateSlug, ownerOrAdmin)
	secured.DELETE("/users/:id", userHandler.Delete, adminOnly)
	secured.POST("/users/:id/avatar", userHandler.UploadAvatar, ownerOrAdmin)
	secured.POST("/users/:id/languages", userHandler.AddLanguage, ownerOrAdmin)
	secured.DELETE("/users/:id/languages/:languageId/:role", userHandler.RemoveLanguage, ownerOrAdmin)
}

// tokenIdentity extracts the subject id and admin flag from the snapshot
// claims stored by the JWT middleware.
func tokenIdentity(c echo.Context) (id uint, isAdmin bool, ok bool) {
	token, tok := c.Get("user").(*jwt.Token)
	if !tok {
		return 0, false, false
	}
	claims, cok := token.Claims.(jwt.MapClaims)
	if !cok {
		return 0, false, false
	}
	rawID, iok := claims["id"].(float64)
	if !iok {
		return 0, false, false
	}
	admin, _ := claims["isAdmin"].(bool)
	return uint(rawID), admin, true
}

// ownerOrAdmin allows the request through when the token subject matches the
// :id path parameter or carries the admin flag.
func ownerOrAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, isAdmin, ok := tokenIdentity(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		target, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
		}
		if id != uint(target) && !isAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		return next(c)
	}
}

// adminOnly allows the request through only for admin tokens.
func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, isAdmin, ok := tokenIdentity(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		if !isAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}
		return next(c)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
