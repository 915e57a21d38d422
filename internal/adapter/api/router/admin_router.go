package router

import (
	"github.com/labstack/echo/v4"

	"royalchat/internal/adapter/api/handler"
	"royalchat/internal/adapter/api/middleware"
)

func SetupAdminRouter(e *echo.Echo, adminHandler *handler.AdminHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	admin := e.Group("/api/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(adminMiddleware.AdminOnly)

	admin.GET("/me", adminHandler.Me)
	admin.GET("/users", adminHandler.GetUsersList)
	admin.GET("/users/all", adminHandler.GetAllUsers)
	admin.GET("/stats", adminHandler.GetStats)
	admin.DELETE("/users/:id", adminHandler.RemoveUser)
}
