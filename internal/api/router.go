package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/campusconnect/campusconnect-api/docs"
	"github.com/campusconnect/campusconnect-api/internal/api/handler"
	"github.com/campusconnect/campusconnect-api/internal/api/middleware"
	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// Dependencies is everything the router needs. Mongo and Redis may be nil
// when the process runs on the in-memory store or without dedup.
type Dependencies struct {
	Registration ports.RegistrationService
	Verification ports.VerificationService
	Sessions     ports.SessionService
	Recovery     ports.RecoveryService
	Profiles     ports.ProfileService

	Tokens   ports.TokenIssuer
	Accounts middleware.AccountLoader

	Mongo *mongo.Database
	Redis *redis.Client

	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.BodyLimit("64K"))
	e.Use(httpMetrics(d.Registry))

	authHandler := handler.NewAuthHandler(d.Registration, d.Verification, d.Sessions, d.Recovery)
	profileHandler := handler.NewProfileHandler(d.Profiles)
	adminHandler := handler.NewAdminHandler(d.Profiles)
	authGate := middleware.Auth(d.Tokens, d.Accounts)

	// --- Public auth routes ---
	auth := e.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/verify-email", authHandler.VerifyEmail)
	auth.POST("/resend-code", authHandler.ResendCode)
	auth.POST("/login", authHandler.Login)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	// --- Authenticated account routes ---
	auth.GET("/me", profileHandler.Me, authGate)
	auth.PUT("/profile", profileHandler.UpdateProfile, authGate)

	admin := e.Group("/admin", authGate, middleware.RBAC(domain.RoleAdmin))
	admin.GET("/accounts/:id", adminHandler.GetAccount)

	// --- Health probes and operational endpoints (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func httpMetrics(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: "campusconnect"}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
