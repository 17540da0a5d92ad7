package httpserver

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tinytelemetry/homeroom/internal/cache"
	"github.com/tinytelemetry/homeroom/internal/model"
	"github.com/tinytelemetry/homeroom/internal/tui"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

// Dashboard is the narrow view of the kiosk the API needs. Select is
// asynchronous: the request is queued for the UI loop, which ignores it if
// the index has gone out of range.
type Dashboard interface {
	Snapshot() tui.Snapshot
	Select(index int)
}

// StatsReporter reports per-query refresh statistics.
type StatsReporter interface {
	Stats() []cache.Stats
}

// Server provides an HTTP API for inspecting and steering the kiosk.
type Server struct {
	addr      string
	dash      Dashboard
	stats     StatsReporter
	logger    *log.Logger
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	now       func() time.Time
}

// NewServer creates a new HTTP API server. A nil logger discards output.
func NewServer(addr string, dash Dashboard, stats StatsReporter, logger *log.Logger) *Server {
	if addr == "" {
		addr = model.DefaultAPIAddr
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		dash:      dash,
		stats:     stats,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.addr }

// Handler builds the API's route table.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/screens", s.handleScreens)
	r.POST("/api/screens/:index", s.handleSelect)
	r.GET("/api/cache", s.handleCache)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	s.startTime = s.now()
	s.logger.Info("api listening", "addr", listener.Addr().String())

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("api server stopped", "err", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("api request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	snap := s.dash.Snapshot()
	active := ""
	if snap.Active >= 0 && snap.Active < len(snap.Screens) {
		active = snap.Screens[snap.Active].ID
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  snap.State.String(),
		"uptime": s.now().Sub(s.startTime).Round(time.Second).String(),
		"active": active,
	})
}

func (s *Server) handleScreens(c *gin.Context) {
	snap := s.dash.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"screens": snap.Screens,
		"active":  snap.Active,
	})
}

func (s *Server) handleSelect(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "screen index must be an integer"})
		return
	}
	snap := s.dash.Snapshot()
	if idx < 0 || idx >= len(snap.Screens) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("screen index %d out of range [0, %d)", idx, len(snap.Screens)),
		})
		return
	}
	if snap.State == tui.Terminating {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "kiosk is shutting down"})
		return
	}

	s.dash.Select(idx)
	c.JSON(http.StatusAccepted, gin.H{"requested": idx, "screen": snap.Screens[idx].ID})
}

type cacheStat struct {
	Key         string     `json:"key"`
	HasValue    bool       `json:"has_value"`
	FetchedAt   *time.Time `json:"fetched_at,omitempty"`
	Age         string     `json:"age,omitempty"`
	Fetches     int        `json:"fetches"`
	Failures    int        `json:"failures"`
	Consecutive int        `json:"consecutive_failures"`
	LastError   string     `json:"last_error,omitempty"`
	LastLatency float64    `json:"last_latency_ms"`
	InFlight    bool       `json:"in_flight"`
	RetryAt     *time.Time `json:"retry_at,omitempty"`
}

func (s *Server) handleCache(c *gin.Context) {
	now := s.now()
	stats := s.stats.Stats()
	out := make([]cacheStat, 0, len(stats))
	for _, st := range stats {
		cs := cacheStat{
			Key:         st.Key,
			HasValue:    st.HasValue,
			Fetches:     st.Fetches,
			Failures:    st.Failures,
			Consecutive: st.Consecutive,
			LastError:   st.LastError,
			LastLatency: float64(st.LastLatency) / float64(time.Millisecond),
			InFlight:    st.InFlight,
		}
		if st.HasValue {
			fetched := st.FetchedAt
			cs.FetchedAt = &fetched
			cs.Age = humanize.RelTime(st.FetchedAt, now, "ago", "from now")
		}
		if st.RetryAt.After(now) {
			retry := st.RetryAt
			cs.RetryAt = &retry
		}
		out = append(out, cs)
	}
	c.JSON(http.StatusOK, gin.H{"keys": out})
}
