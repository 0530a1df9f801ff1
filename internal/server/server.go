// Package server is the REST backend the Brainmint client talks to.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/store"
)

// RepoLister lists repositories through a connected integration.
type RepoLister interface {
	ListRepos(ctx context.Context, in model.Integration) ([]model.Repo, error)
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the source of "today" for sprint and report
// computations.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithRepoLister sets the integration backend for repository listings.
// Without one, repository listing answers 503.
func WithRepoLister(r RepoLister) Option {
	return func(s *Server) { s.repos = r }
}

// WithAuthToken requires every API request except the health check to
// carry "Authorization: Bearer <token>".
func WithAuthToken(token string) Option {
	return func(s *Server) { s.authToken = token }
}

// WithAccessLog writes gin access logs to w. Nil disables them.
func WithAccessLog(w io.Writer) Option {
	return func(s *Server) { s.accessLog = w }
}

// Server provides HTTP handlers for the task and sprint backend.
type Server struct {
	engine    *gin.Engine
	store     store.Store
	repos     RepoLister
	logger    *slog.Logger
	now       func() time.Time
	authToken string
	accessLog io.Writer
}

// New constructs the HTTP server with routes and middleware configured.
func New(st store.Store, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		store:     st,
		logger:    logger,
		now:       time.Now,
		accessLog: gin.DefaultWriter,
	}
	for _, opt := range opts {
		opt(srv)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if srv.accessLog != nil {
		router.Use(gin.LoggerWithWriter(srv.accessLog))
	}
	router.Use(requestID())
	srv.engine = router

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", slog.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	api.GET("/healthz", s.handleHealth)

	secured := api.Group("", s.requireToken)
	{
		tasks := secured.Group("/tasks")
		{
			tasks.GET("/", s.handleListTasks)
			tasks.POST("/create/", s.handleCreateTask)
			tasks.POST("/update-status/", s.handleUpdateStatus)
			tasks.POST("/update-priority/", s.handleUpdatePriority)
			tasks.POST("/increment-subtask/", s.handleIncrementSubtask)
			tasks.POST("/assign-sprint/", s.handleAssignSprint)
			tasks.POST("/update-due-date/", s.handleUpdateDueDate)
			tasks.POST("/delete/", s.handleDeleteTask)
			tasks.POST("/archive/", s.handleArchiveTask)
			tasks.POST("/unarchive/", s.handleUnarchiveTask)
			tasks.GET("/archived/", s.handleListArchived)
		}

		sprints := secured.Group("/sprints")
		{
			sprints.GET("/", s.handleListSprints)
			sprints.POST("/create/", s.handleCreateSprints)
			sprints.POST("/delete/", s.handleDeleteSprints)
		}

		secured.GET("/summary/", s.handleSummary)
		secured.GET("/sprint-report/", s.handleSprintReport)

		pages := secured.Group("/pages")
		{
			pages.GET("/", s.handleListPages)
			pages.POST("/create/", s.handleCreatePage)
			pages.POST("/update/", s.handleUpdatePage)
			pages.POST("/delete/", s.handleDeletePage)
		}

		integrations := secured.Group("/integrations")
		{
			integrations.GET("/", s.handleListIntegrations)
			integrations.POST("/save/", s.handleSaveIntegration)
			integrations.POST("/delete/", s.handleDeleteIntegration)
			integrations.GET("/repos/", s.handleListRepos)
		}
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.respondError(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// requestID echoes the client's X-Request-ID, minting one when absent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) requireToken(c *gin.Context) {
	if s.authToken == "" {
		c.Next()
		return
	}
	got := c.GetHeader("Authorization")
	want := "Bearer " + s.authToken
	if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
		return
	}
	c.Next()
}

// today is the server's current calendar day.
func (s *Server) today() time.Time {
	return model.Day(s.now())
}

// queryUserID reads the required user_id query parameter.
func (s *Server) queryUserID(c *gin.Context) (int64, bool) {
	raw := c.Query("user_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if raw == "" || err != nil || id <= 0 {
		s.respondError(c, http.StatusBadRequest, errors.New("user_id required"))
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body, answering 400 on malformed JSON.
func (s *Server) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case model.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail responds with the status that matches err.
func (s *Server) fail(c *gin.Context, err error) {
	s.respondError(c, statusFor(err), err)
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(status))
	}
	s.logger.Error("request failed",
		slog.String("path", c.FullPath()),
		slog.Int("status", status),
		slog.String("request_id", c.GetString("request_id")),
		slog.String("error", err.Error()),
	)
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondSuccess writes the payload, or only the status when nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

// respondMessage answers with the {"message": ...} envelope.
func respondMessage(c *gin.Context, msg string) {
	respondSuccess(c, http.StatusOK, gin.H{"message": msg})
}
