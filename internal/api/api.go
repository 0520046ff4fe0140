package api

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	middleware "github.com/oapi-codegen/echo-middleware"
	"go.uber.org/zap"

	"github.com/rryowa/govintel_gateway/internal/controller"
	"github.com/rryowa/govintel_gateway/internal/service"
	"github.com/rryowa/govintel_gateway/internal/util"
)

const (
	shutdownTimeout = 5 * time.Second
)

type API struct {
	server          *echo.Echo
	controller      *controller.Controller
	log             *zap.SugaredLogger
	gracefulTimeout time.Duration
	apiKeyService   *service.APIKeyService
	loginLimiter    *RateLimiter
	cleanupFuncs    []func()
}

func NewAPI(
	c *controller.Controller,
	l *zap.SugaredLogger,
	sc *util.ServerConfig,
	apiKeyService *service.APIKeyService,
	limiter *RateLimiter,
	cleanupFuncs []func(),
) *API {
	e := echo.New()
	e.HideBanner = true

	e.Server.Addr = sc.ServerAddr
	e.Server.WriteTimeout = sc.WriteTimeout
	e.Server.ReadTimeout = sc.ReadTimeout
	e.Server.IdleTimeout = sc.IdleTimeout
	e.HTTPErrorHandler = ErrorHandler(l)

	return &API{
		server:          e,
		controller:      c,
		log:             l,
		gracefulTimeout: sc.GracefulTimeout,
		apiKeyService:   apiKeyService,
		loginLimiter:    limiter,
		cleanupFuncs:    cleanupFuncs,
	}
}

// SetupRoutes installs middleware and every route. It is separate from Run
// so tests can drive the router through ServeHTTP.
func (a *API) SetupRoutes() error {
	swagger, err := controller.GetSwagger()
	if err != nil {
		return err
	}
	swagger.Servers = nil

	a.server.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	a.server.Use(echomiddleware.RequestLoggerWithConfig(GetLoggerMiddlewareConfig(a)))
	a.server.Use(echomiddleware.Recover())

	a.server.GET("/healthz", a.controller.CheckServer)

	internal := a.server.Group("/internal", APIKeyAuthMiddleware(a.apiKeyService))
	internal.GET("/metrics", a.controller.Metrics())
	internal.GET("/audit", a.controller.ListAuditEvents)

	g := a.server.Group("/api")
	g.Use(a.loginLimiter.Middleware(LoginPath))
	g.Use(middleware.OapiRequestValidator(swagger))
	/* Маршруты из openapi/openapi.yaml; ServerInterface связывает
	их с методами контроллера и разбирает параметры пути.
	*/
	controller.RegisterHandlersWithBaseURL(g, a.controller, "")

	return nil
}

func (a *API) Handler() http.Handler {
	return a.server
}

func (a *API) Run(ctxBackground context.Context) {
	ctx, stop := signal.NotifyContext(ctxBackground, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.SetupRoutes(); err != nil {
		a.log.Fatalf("Failed to load OpenAPI specification: %v", err)
	}

	a.ListenGracefulShutdown(ctx)
}

func (a *API) ListenGracefulShutdown(ctx context.Context) {
	go func() {
		err := a.server.Start(a.server.Server.Addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()
	a.log.Infof("Listening on: %s", a.server.Server.Addr)

	<-ctx.Done()
	a.log.Info("Shutting down server...")

	timeout := a.gracefulTimeout
	if timeout <= 0 {
		timeout = shutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Errorf("shutdown: %v", err)
	} else {
		a.log.Info("server shutdown completed")
	}

	for i := len(a.cleanupFuncs) - 1; i >= 0; i-- {
		a.cleanupFuncs[i]()
	}
}
