package router

import (
	"github.com/labstack/echo/v4"

	"royalchat/internal/adapter/api/handler"
	"royalchat/internal/adapter/api/middleware"
)

// SetupChatRouter wires the REST side of the chat. The websocket push
// path reaches the same use case through its own route.
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, fileHandler *handler.FileHandler, authMiddleware *middleware.AuthMiddleware) {
	chat := e.Group("/api/chat")
	chat.Use(authMiddleware.Authenticate)

	chat.POST("/send", chatHandler.SendMessage)
	chat.GET("/:userId", chatHandler.GetConversation)
	chat.POST("/mark-read/:userId", chatHandler.MarkRead)
	chat.DELETE("/message/:id", chatHandler.DeleteMessage)

	chat.POST("/upload", fileHandler.UploadChatFile)
	chat.POST("/upload/avatar", fileHandler.UploadAvatar)
}
