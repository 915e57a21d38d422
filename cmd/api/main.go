package main

import (
	"context"
	"log"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"royalchat/internal/adapter/api"
	"royalchat/internal/adapter/api/handler"
	apimiddleware "royalchat/internal/adapter/api/middleware"
	"royalchat/internal/adapter/api/router"
	"royalchat/internal/adapter/repository"
	"royalchat/internal/infrastructure/firebase"
	"royalchat/internal/infrastructure/mail"
	"royalchat/internal/infrastructure/ratelimit"
	"royalchat/internal/infrastructure/storage"
	"royalchat/internal/infrastructure/websocket"
	"royalchat/internal/usecase"
	"royalchat/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.AdminID == "" {
		log.Fatalf("ADMIN_ID is required: every conversation needs its admin counterpart")
	}

	ctx := context.Background()

	var opts []option.ClientOption
	credentialsPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, credentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	messageRepo := repository.NewFirestoreMessageRepository(firestoreClient)
	otpRepo := repository.NewFirestoreOTPRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	wsManager := websocket.NewManager()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		wsManager.EnableRedisBridge(ctx, rdb)
		log.Printf("Websocket fan-out bridged through Redis at %s", cfg.RedisAddr)
	}

	// One limiter serves the middleware and every use case, so per-user
	// buckets are shared and only one cleanup routine runs.
	limiter := ratelimit.NewRateLimiter()
	limiter.StartCleanupRoutine()

	authUseCase := usecase.NewAuthUseCase(userRepo, otpRepo, firebaseAuthClient, mailer, limiter, time.Duration(cfg.OTPExpiry)*time.Second)
	userUseCase := usecase.NewUserUseCase(userRepo, messageRepo)
	chatUseCase := usecase.NewChatUseCase(messageRepo, userRepo, storageClient, wsManager, limiter, cfg.AdminID)
	adminUseCase := usecase.NewAdminUseCase(userRepo, messageRepo, firebaseAuthClient, wsManager)

	// Frames pushed over a socket run through the same use case as REST.
	wsManager.SetChatService(chatUseCase)

	otpSweeper, err := usecase.NewOTPSweeper(otpRepo, cfg.OTPSweepCron)
	if err != nil {
		log.Fatalf("Failed to initialize OTP sweeper: %v", err)
	}
	go otpSweeper.Run(ctx)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	router.Setup(e, router.Handlers{
		Auth:      handler.NewAuthHandler(authUseCase),
		User:      handler.NewUserHandler(userUseCase),
		Admin:     handler.NewAdminHandler(adminUseCase),
		Chat:      handler.NewChatHandler(chatUseCase, userRepo),
		File:      handler.NewFileHandler(storageClient),
		WebSocket: handler.NewWebSocketHandler(wsManager),
		Health:    handler.NewHealthHandler(),
	}, router.Middlewares{
		Auth:    apimiddleware.NewAuthMiddleware(firebaseAuthClient),
		Admin:   apimiddleware.NewAdminMiddleware(userRepo),
		Limiter: limiter,
	})

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
