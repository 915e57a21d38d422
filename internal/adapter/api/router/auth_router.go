package router

import (
	"github.com/labstack/echo/v4"

	"royalchat/internal/adapter/api/handler"
	"royalchat/internal/adapter/api/middleware"
	"royalchat/internal/infrastructure/ratelimit"
)

func SetupAuthRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	auth := e.Group("/api/auth")
	auth.Use(middleware.RateLimit(limiter, "auth"))

	auth.POST("/register", authHandler.Register)
	auth.POST("/verify-otp", authHandler.VerifyOTP)
	auth.POST("/login", authHandler.Login)
	auth.POST("/resend-otp", authHandler.ResendOTP)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	auth.POST("/change-password", authHandler.ChangePassword, authMiddleware.Authenticate)
}
