package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/enrollment_backend/config"
	"github.com/HSouheill/enrollment_backend/controllers"
	"github.com/HSouheill/enrollment_backend/middleware"
	"github.com/HSouheill/enrollment_backend/repositories"
	"github.com/HSouheill/enrollment_backend/routes"
	"github.com/HSouheill/enrollment_backend/services"
	"github.com/HSouheill/enrollment_backend/utils"
	"github.com/HSouheill/enrollment_backend/websocket"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := config.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	client, err := config.ConnectDB(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to MongoDB")
	}

	// Connect to Redis
	redisClient := config.ConnectRedis(ctx, cfg, logger)

	// Create WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	e := newServer(ctx, cfg, logger, client, redisClient, hub)

	if cfg.IsProduction() && cfg.KeepAliveInterval > 0 {
		go services.RunKeepAlive(ctx, "http://localhost:"+cfg.Port+"/health", cfg.KeepAliveInterval, logger)
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Bool("demo_mode", cfg.DemoMode).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdown(e, client, redisClient, logger)
}

func newServer(ctx context.Context, cfg *config.Config, logger zerolog.Logger, client *mongo.Client, redisClient *redis.Client, hub *websocket.Hub) *echo.Echo {
	store := repositories.NewEnrollmentRepository(client, cfg.DBName, config.EnrollmentsCollection)
	sessions := utils.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL)

	var sender utils.OTPSender
	if !cfg.DemoMode {
		sender = utils.NewSMSService(cfg.SMSAPIURL, cfg.SMSUsername, cfg.SMSPassword, cfg.SMSSenderID, logger)
	}

	var mailer services.ConfirmationMailer = services.NoopMailer{}
	if cfg.MailEnabled() {
		mailer = services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom, cfg.CourseName)
	}

	var summarizer services.Summarizer
	if cfg.SummarizerEnabled() {
		summarizer = services.NewHFClient(cfg.HFBaseURL, cfg.HFModel, cfg.HFAPIKey)
	} else {
		logger.Warn().Msg("HF_API_KEY not set, PDF summaries disabled")
	}

	enrollments := services.NewEnrollmentService(store, sender, sessions, services.EnrollmentOptions{
		DemoMode:   cfg.DemoMode,
		OTPTTL:     cfg.OTPTTL,
		BcryptCost: cfg.OTPBcryptCost,
	}, logger)
	verifications := services.NewVerificationService(store, utils.NewAttemptLimiter(redisClient, cfg.OTPMaxAttempts, cfg.OTPTTL), hub, logger)
	orders := services.NewPaymentOrderService(services.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret), cfg.CourseAmount, cfg.CourseCurrency, logger)
	// amountPaid is recorded in major units
	payments := services.NewPaymentVerificationService(store, cfg.RazorpayKeySecret, float64(cfg.CourseAmount)/100, hub, mailer, logger)
	summaries := services.NewSummaryService(services.PDFExtractor{}, summarizer, cfg.HFModel, cfg.SummarizerTimeout, logger)

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = controllers.NewCustomValidator()
	e.HTTPErrorHandler = controllers.ErrorHandler(cfg.IsProduction(), logger)

	rateLimiter := middleware.NewRateLimiter(ctx)

	// Middleware
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.NewCORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(echoMiddleware.BodyLimitWithConfig(echoMiddleware.BodyLimitConfig{
		Limit: "1M",
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/summarize-pdf")
		},
	}))
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: middleware.CheckoutDomains,
		AllowInlineJS:  !cfg.IsProduction(),
	}))
	if cfg.IsProduction() {
		e.Use(httpsRedirect())
	}

	routes.SetupRoutes(e, routes.Handlers{
		Enrollment: controllers.NewEnrollmentController(enrollments, verifications, store),
		Payment:    controllers.NewPaymentController(orders, payments),
		Summary:    controllers.NewSummaryController(summaries, logger),
		Health:     controllers.NewHealthController(store),
		WebSocket:  websocket.NewHandler(hub, sessions, cfg.CORSAllowedOrigins),
		Sessions:   sessions,
	})
	return e
}

// shutdown stops the server first so in-flight requests can still reach the stores.
func shutdown(e *echo.Echo, client *mongo.Client, redisClient *redis.Client, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	if err := client.Disconnect(ctx); err != nil {
		logger.Error().Err(err).Msg("MongoDB disconnect error")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("Redis close error")
		}
	}
	logger.Info().Msg("shutdown complete")
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(http.StatusMovedPermanently, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
