package router

import (
	"github.com/labstack/echo/v4"

	"royalchat/internal/adapter/api/handler"
	"royalchat/internal/adapter/api/middleware"
)

func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	users := e.Group("/api/users")
	users.Use(authMiddleware.Authenticate)

	users.GET("/profile", userHandler.GetProfile)
	users.PUT("/profile", userHandler.UpdateProfile)
	users.GET("/unread", userHandler.UnreadCount)
}
