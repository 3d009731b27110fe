package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"rajpharma.com/api/auth"
	"rajpharma.com/api/catalog"
	"rajpharma.com/api/chat"
	"rajpharma.com/api/config"
	"rajpharma.com/api/inquiry"
	"rajpharma.com/api/orders"
	"rajpharma.com/api/store"
)

func main() {
	if err := config.InitGlobal(); err != nil {
		log.Fatalf("config init failed: %v", err)
	}

	env := config.GetWithDefault("APP_ENV", "development")
	production := env == "production"

	logger, err := buildLogger(production)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoURI := config.GetWithDefault("MONGODB_URI", "mongodb://localhost:27017")
	client, err := store.Connect(ctx, mongoURI)
	if err != nil {
		logger.Fatal("mongodb connection failed", zap.Error(err))
	}
	db := client.Database(config.GetWithDefault("MONGODB_DATABASE", "rajpharma"))
	logger.Info("connected to mongodb", zap.String("database", db.Name()))

	users, err := auth.NewMongoUserStore(ctx, db.Collection("users"))
	if err != nil {
		logger.Fatal("user store init failed", zap.Error(err))
	}

	tokens, err := auth.NewTokenService(config.Get("JWT_SECRET"), "rajpharma", 0)
	if err != nil {
		logger.Fatal("token service init failed", zap.Error(err))
	}
	sessions := auth.NewActivityTracker()

	authSvc := auth.NewService(users, tokens, sessions, auth.ServiceConfig{
		AdminEmail:    config.Get("ADMIN_EMAIL"),
		AdminPassword: config.Get("ADMIN_PASSWORD"),
	}, logger)

	guard := auth.NewGuard(tokens, sessions, users, auth.DefaultIdleWindow, production, logger)
	google := auth.NewGoogleAuthenticator(
		config.Get("GOOGLE_CLIENT_ID"),
		config.Get("GOOGLE_CLIENT_SECRET"),
		config.Get("GOOGLE_CALLBACK_URL"),
	)
	authHandlers := auth.NewHandlers(authSvc, guard, google, logger)

	uploadDir := config.GetWithDefault("UPLOAD_DIR", "uploads")
	medicines := catalog.NewMongoStore(db.Collection("medicines"))
	catalogHandlers := catalog.NewHandlers(medicines, uploadDir, logger)

	orderStore := orders.NewMongoStore(db.Collection("orders"))
	orderHandlers := orders.NewHandlers(orderStore, medicines, tokens, logger)

	inquiryStore := inquiry.NewMongoStore(db.Collection("inquiries"))
	inquiryHandlers := inquiry.NewHandlers(inquiryStore, logger)

	var responder chat.Responder
	if key := config.Get("GEMINI_API_KEY"); key != "" {
		responder, err = chat.NewGeminiResponder(key, config.GetWithDefault("GEMINI_MODEL", "gemini-1.5-flash"))
		if err != nil {
			logger.Fatal("chat responder init failed", zap.Error(err))
		}
	}
	chatHandlers := chat.NewHandlers(responder, logger)

	app := fiber.New(fiber.Config{
		AppName:      "rajpharma-api",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetWithDefault("FRONTEND_URL", "http://localhost:3000"),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(requestLogger(logger))

	app.Use("/api", limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 15 * time.Minute,
	}))
	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "API is running"})
	})
	app.Static("/uploads", uploadDir)

	auth.SetupRoutes(app, authHandlers, guard, loginLimiter)
	catalog.SetupRoutes(app, catalogHandlers, guard.Protect(), guard.Admin())
	orders.SetupRoutes(app, orderHandlers, guard.Protect(), guard.Admin())
	inquiry.SetupRoutes(app, inquiryHandlers, guard.Protect(), guard.Admin())
	chat.SetupRoutes(app, chatHandlers)

	app.Use(auth.NotFoundHandler())

	port := config.GetWithDefault("PORT", "5000")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()
	logger.Info("server listening", zap.String("port", port), zap.String("env", env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	if err := store.Disconnect(client); err != nil {
		logger.Error("mongodb disconnect error", zap.Error(err))
	}
}

func buildLogger(production bool) (*zap.Logger, error) {
	if production {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
		)
		return err
	}
}
