package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/tabgraph/internal/globaltime"
	"horse.fit/tabgraph/internal/graph"
)

type Options struct {
	Host            string
	Port            int
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	source GraphSource
	logger zerolog.Logger
	opts   Options
}

func NewServer(source GraphSource, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := opts.Port
	if port <= 0 {
		port = 8095
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		source: source,
		logger: logger,
		opts: Options{
			Host:            host,
			Port:            port,
			AllowedOrigins:  origins,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.source == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.buildEcho()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("tabgraph api server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("tabgraph api server stopped")
	return nil
}

func (s *Server) buildEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/graph", s.handleGraph)
	api.GET("/stats", s.handleStats)
	api.GET("/groups", s.handleGroups)
	api.GET("/groups/:group_id", s.handleGroupDetail)
	api.GET("/tabs/:tab_id", s.handleTabDetail)

	return e
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "tabgraph",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) loadGraph(c echo.Context) (*graph.Graph, error) {
	g, err := s.source.Graph(c.Request().Context())
	if err != nil {
		if errors.Is(err, ErrNoGraph) {
			return nil, failNotFound(c, "No graph available")
		}
		s.logger.Error().Err(err).Msg("load graph failed")
		return nil, internalError(c, "Failed to load graph")
	}
	return g, nil
}

func (s *Server) handleGraph(c echo.Context) error {
	g, err := s.loadGraph(c)
	if g == nil {
		return err
	}
	return success(c, g)
}

func (s *Server) handleStats(c echo.Context) error {
	g, err := s.loadGraph(c)
	if g == nil {
		return err
	}
	return success(c, map[string]any{
		"source":       g.Source,
		"generated_at": g.GeneratedAt,
		"stats":        g.Stats,
	})
}

func (s *Server) handleGroups(c echo.Context) error {
	g, err := s.loadGraph(c)
	if g == nil {
		return err
	}
	return success(c, map[string]any{
		"items": g.Groups,
	})
}

func (s *Server) handleGroupDetail(c echo.Context) error {
	g, err := s.loadGraph(c)
	if g == nil {
		return err
	}

	groupID, err := parseIDParam(c.Param("group_id"))
	if err != nil {
		return failValidation(c, map[string]string{"group_id": err.Error()})
	}

	for i := range g.Groups {
		group := &g.Groups[i]
		if group.ID != groupID {
			continue
		}

		members := make([]*graph.TabRecord, 0, len(group.TabIDs))
		for _, tabID := range group.TabIDs {
			if tabID >= 0 && tabID < len(g.Tabs) {
				members = append(members, g.Tabs[tabID])
			}
		}
		return success(c, map[string]any{
			"group": group,
			"tabs":  members,
		})
	}

	return failNotFound(c, "Group not found")
}

func (s *Server) handleTabDetail(c echo.Context) error {
	g, err := s.loadGraph(c)
	if g == nil {
		return err
	}

	tabID, err := parseIDParam(c.Param("tab_id"))
	if err != nil {
		return failValidation(c, map[string]string{"tab_id": err.Error()})
	}
	if tabID < 0 || tabID >= len(g.Tabs) {
		return failNotFound(c, "Tab not found")
	}

	tab := g.Tabs[tabID]
	edges := make([]graph.Edge, 0, 8)
	for _, edge := range g.Edges {
		if edge.SourceID == tabID || edge.TargetID == tabID {
			edges = append(edges, edge)
		}
	}

	return success(c, map[string]any{
		"tab":   tab,
		"edges": edges,
	})
}

func parseIDParam(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("is required")
	}
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < 0 {
		return 0, fmt.Errorf("must be >= 0")
	}
	return value, nil
}
