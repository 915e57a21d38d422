package router

import (
	"github.com/labstack/echo/v4"

	"royalchat/internal/adapter/api/handler"
	"royalchat/internal/adapter/api/middleware"
	"royalchat/internal/infrastructure/ratelimit"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Admin     *handler.AdminHandler
	Chat      *handler.ChatHandler
	File      *handler.FileHandler
	WebSocket *handler.WebSocketHandler
	Health    *handler.HealthHandler
}

type Middlewares struct {
	Auth    *middleware.AuthMiddleware
	Admin   *middleware.AdminMiddleware
	Limiter *ratelimit.RateLimiter
}

func Setup(e *echo.Echo, h Handlers, m Middlewares) {
	SetupAuthRouter(e, h.Auth, m.Auth, m.Limiter)
	SetupUserRouter(e, h.User, m.Auth)
	SetupAdminRouter(e, h.Admin, m.Auth, m.Admin)
	SetupChatRouter(e, h.Chat, h.File, m.Auth)
	SetupWebSocketRouter(e, h.WebSocket)
	SetupHealthRouter(e, h.Health)
}
