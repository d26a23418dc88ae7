package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mangatl/internal/api"
	"mangatl/internal/config"
	"mangatl/internal/events"
	"mangatl/internal/logging"
	"mangatl/internal/services"
)

const (
	requestIDHeader   = "X-Request-ID"
	keepAliveInterval = 15 * time.Second
	maxCommandBody    = 256 << 20
	defaultEventLimit = 200
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	engine *gin.Engine

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}
	srv.engine = srv.routes(cfg)
	srv.server = &http.Server{
		Handler:           srv.engine,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	if handler := s.corsHandler(cfg.Paths.AllowedOrigins); handler != nil {
		r.Use(handler)
	}
	r.Use(requestIDMiddleware())

	group := r.Group("/api", authMiddleware(cfg.Paths.APIToken))
	group.GET("/status", s.handleStatus)
	group.GET("/commands", s.handleCommands)
	group.POST("/commands/:name", s.handleInvoke)
	group.GET("/events", s.handleEventStream)
	group.GET("/events/recent", s.handleRecentEvents)
	return r
}

// corsHandler allows the configured front-end origins. Non-HTTP schemes such
// as tauri:// are registered as custom schemas.
func (s *apiServer) corsHandler(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	var schemas []string
	for _, origin := range origins {
		scheme, _, ok := strings.Cut(origin, "://")
		if ok && scheme != "http" && scheme != "https" {
			schemas = append(schemas, scheme+"://")
		}
	}
	cfg := cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		CustomSchemas: schemas,
		MaxAge:        12 * time.Hour,
	}
	if err := cfg.Validate(); err != nil {
		logging.WarnWithContext(s.logger, "cors disabled", "api_cors_invalid",
			logging.Error(err),
			logging.Strings("origins", origins),
			logging.String(logging.FieldImpact, "browser front ends on other origins cannot call the API"),
			logging.String(logging.FieldErrorHint, "fix paths.allowed_origins in the config file"),
		)
		return nil
	}
	return cors.New(cfg)
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *apiServer) start(ctx context.Context) error {
	if s.bind == "" {
		s.logger.Info("api server disabled")
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

func (s *apiServer) address() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(c *gin.Context) {
	status := s.daemon.Status(c.Request.Context())
	c.JSON(http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		StartedAt:    api.FormatTime(status.StartedAt),
		APIAddress:   status.APIAddress,
		LockFilePath: status.LockFilePath,
		LogPath:      status.LogPath,
		Commands:     status.Commands,
		LastEventSeq: status.LastEventSeq,
		Dependencies: api.FromDependencies(status.Dependencies),
	})
}

func (s *apiServer) handleCommands(c *gin.Context) {
	c.JSON(http.StatusOK, api.CommandList{Commands: s.daemon.Commands()})
}

func (s *apiServer) handleInvoke(c *gin.Context) {
	name := c.Param("name")
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCommandBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.CommandResponse{Error: "read request body: " + err.Error()})
		return
	}
	args := json.RawMessage(bytes.TrimSpace(body))
	if len(args) > 0 && !json.Valid(args) {
		c.JSON(http.StatusBadRequest, api.CommandResponse{Error: "request body is not valid JSON"})
		return
	}

	result, err := s.daemon.Invoke(c.Request.Context(), name, args)
	if err != nil {
		c.JSON(services.HTTPStatus(err), api.CommandResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, api.CommandResponse{Data: result})
}

// handleEventStream serves hub events as server-sent events. Each frame is
// "id: <seq>", "event: <name>" and "data: <payload json>"; idle connections
// receive a keep-alive comment.
func (s *apiServer) handleEventStream(c *gin.Context) {
	since := parseSince(c)
	name := strings.TrimSpace(c.Query("name"))
	hub := s.daemon.Events()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, api.CommandResponse{Error: "streaming unsupported"})
		return
	}
	_, _ = io.WriteString(c.Writer, ": connected\n\n")
	flusher.Flush()

	ctx := c.Request.Context()
	for {
		waitCtx, cancel := context.WithTimeout(ctx, keepAliveInterval)
		batch, _, err := hub.Fetch(waitCtx, since, defaultEventLimit, true)
		cancel()

		for _, evt := range batch {
			since = evt.Sequence
			if name != "" && evt.Name != name {
				continue
			}
			if err := writeSSE(c.Writer, evt); err != nil {
				return
			}
		}
		if len(batch) > 0 {
			flusher.Flush()
		}

		if ctx.Err() != nil {
			return
		}
		if err != nil && len(batch) == 0 {
			if _, werr := io.WriteString(c.Writer, ": keep-alive\n\n"); werr != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, evt events.Event) error {
	payload, err := evt.MarshalPayload()
	if err != nil {
		payload = []byte("null")
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", evt.Sequence, evt.Name, payload)
	return err
}

func (s *apiServer) handleRecentEvents(c *gin.Context) {
	hub := s.daemon.Events()
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = defaultEventLimit
	}
	since := parseSince(c)
	name := strings.TrimSpace(c.Query("name"))

	var (
		list []events.Event
		next uint64
	)
	if since == 0 {
		list, next = hub.Tail(limit)
	} else {
		list, next, _ = hub.Fetch(c.Request.Context(), since, limit, false)
	}
	if name != "" {
		filtered := list[:0]
		for _, evt := range list {
			if evt.Name == name {
				filtered = append(filtered, evt)
			}
		}
		list = filtered
	}
	c.JSON(http.StatusOK, api.EventsResponse{Events: api.FromEvents(list), Next: next})
}

func parseSince(c *gin.Context) uint64 {
	value := c.Query("since")
	if value == "" {
		value = c.GetHeader("Last-Event-ID")
	}
	since, _ := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	return since
}
