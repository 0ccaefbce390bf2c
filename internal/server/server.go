package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/akave-ai/logviewer/internal/auth"
	"github.com/akave-ai/logviewer/internal/config"
	"github.com/akave-ai/logviewer/internal/handler"
	"github.com/akave-ai/logviewer/internal/logging"
	"github.com/akave-ai/logviewer/internal/logviewer"
	"github.com/akave-ai/logviewer/internal/response"
)

// Deps are the collaborators the routes forward to.
type Deps struct {
	Viewer        logviewer.Viewer
	Levels        *logging.LevelSwitch
	Authenticator auth.Authenticator
	Logger        zerolog.Logger
	// NewRelic is optional.
	NewRelic *newrelic.Application
}

// Server holds the Echo app and dependencies.
type Server struct {
	Echo   *echo.Echo
	Config *config.Config
	logger zerolog.Logger
}

// New builds the Echo server and registers routes.
func New(cfg *config.Config, deps Deps) *Server {
	logger := logging.Component(deps.Logger, "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.Server.IdleTimeout) * time.Second

	e.Use(
		middleware.Recover(),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}),
		requestLogger(logger),
	)
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.Server.CORSAllowedOrigins}))
	}
	if deps.NewRelic != nil {
		e.Use(newRelicTransaction(deps.NewRelic))
	}

	e.GET("/api/health", func(c echo.Context) error {
		return response.OK(c, map[string]string{"status": "ok"}, "")
	})

	guard := auth.Require(auth.SectionAccessSettings, deps.Authenticator)

	lv := handler.NewLogViewerHandler(deps.Viewer, deps.Levels, logging.Component(deps.Logger, "logviewer"))
	g := e.Group("/api/logviewer", guard)
	g.GET("/can-view-logs", lv.CanViewLogs)
	g.GET("/error-count", lv.GetNumberOfErrors)
	g.GET("/level-counts", lv.GetLogLevelCounts)
	g.GET("/message-templates", lv.GetMessageTemplates)
	g.GET("/logs", lv.GetLogs)
	g.GET("/saved-searches", lv.GetSavedSearches)
	g.POST("/saved-searches", lv.PostSavedSearch)
	g.POST("/saved-searches/delete", lv.DeleteSavedSearch)
	g.GET("/log-level", lv.GetLogLevel)
	g.POST("/log-level", lv.SetLogLevel)

	pe := handler.NewPropertyEditorHandler()
	pg := e.Group("/api/propertyeditors", guard)
	pg.GET("/datetime/config", pe.GetDateTimeConfig)
	pg.POST("/datetime/config/editor", pe.PostDateTimeEditorConfig)

	return &Server{Echo: e, Config: cfg, logger: logger}
}

// requestLogger writes one access log event per request.
func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := logger.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = logger.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// newRelicTransaction wraps each request in a New Relic web transaction and
// stores it in the request context for the database tracer.
func newRelicTransaction(app *newrelic.Application) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			txn := app.StartTransaction(req.Method + " " + c.Path())
			defer txn.End()

			txn.SetWebRequestHTTP(req)
			c.Response().Writer = txn.SetWebResponse(c.Response().Writer)
			c.SetRequest(req.WithContext(newrelic.NewContext(req.Context(), txn)))

			err := next(c)
			if err != nil {
				txn.NoticeError(err)
			}
			return err
		}
	}
}

// Start starts the HTTP server. Blocks until the context is cancelled or the
// server fails.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("shutdown")
		}
	}()
	addr := ":" + s.Config.Server.Port
	s.logger.Info().Str("addr", addr).Msg("listening")
	if err := s.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
