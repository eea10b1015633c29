// Package webui serves the goal and perf panels to browsers. View envelopes
// are applied to the panels and pushed to every connected WebSocket client.
package webui

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alantheprice/goalview/pkg/events"
	"github.com/alantheprice/goalview/pkg/fleche"
	"github.com/alantheprice/goalview/pkg/goals"
	"github.com/alantheprice/goalview/pkg/panel"
	"github.com/alantheprice/goalview/pkg/utils"
)

//go:embed static/*
var staticFiles embed.FS

// DefaultPort is used when no port is configured.
const DefaultPort = 54321

// ConnectionInfo stores metadata about a WebSocket connection
type ConnectionInfo struct {
	SessionID   string
	ConnectedAt time.Time
}

// Options configures a ViewServer.
type Options struct {
	Port int
	// Width is the column budget of rendered goal panels.
	Width     int
	CacheSize int
	Format    goals.Options
	Logger    *utils.Logger
}

// ViewServer owns the panels and pushes their updates to browsers.
type ViewServer struct {
	eventBus    *events.EventBus
	goals       *panel.GoalPanel
	perf        *panel.PerfPanel
	tracker     *fleche.Tracker
	port        int
	width       int
	format      goals.Options
	logger      *utils.Logger
	server      *http.Server
	upgrader    websocket.Upgrader
	connections sync.Map // map[*websocket.Conn]*ConnectionInfo
	isRunning   bool
	mutex       sync.RWMutex
	startTime   time.Time
	applied     atomic.Int64
	discarded   atomic.Int64
}

// NewViewServer creates a view server publishing on eventBus.
func NewViewServer(eventBus *events.EventBus, opts Options) (*ViewServer, error) {
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Logger == nil {
		opts.Logger = utils.GetLogger()
	}
	goalPanel, err := panel.NewGoalPanel(opts.CacheSize, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &ViewServer{
		eventBus: eventBus,
		goals:    goalPanel,
		perf:     panel.NewPerfPanel(opts.Logger),
		tracker:  fleche.NewTracker(),
		port:     opts.Port,
		width:    opts.Width,
		format:   opts.Format,
		logger:   opts.Logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
			},
		},
		startTime: time.Now(),
	}, nil
}

// Handler returns the HTTP routes of the server.
func (ws *ViewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", ws.handleIndex)
	mux.HandleFunc("/static/", ws.handleStaticFiles)
	mux.HandleFunc("/ws", ws.handleWebSocket)
	mux.HandleFunc("/api/state", ws.handleAPIState)
	mux.HandleFunc("/api/perf", ws.handleAPIPerf)
	mux.HandleFunc("/api/messages", ws.handleAPIMessages)
	mux.HandleFunc("/api/status", ws.handleAPIStatus)
	mux.HandleFunc("/health", ws.handleHealth)
	return mux
}

// Start binds the port and serves until ctx is cancelled. It fails when the
// port is taken.
func (ws *ViewServer) Start(ctx context.Context) error {
	ws.mutex.Lock()
	if ws.isRunning {
		ws.mutex.Unlock()
		return fmt.Errorf("web server is already running")
	}

	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", fmt.Sprintf(":%d", ws.port))
	if err != nil {
		ws.mutex.Unlock()
		return fmt.Errorf("listen on port %d: %w", ws.port, err)
	}
	ws.server = &http.Server{
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	ws.isRunning = true
	server := ws.server
	ws.mutex.Unlock()

	go func() {
		ws.logger.Logf("Goal view listening at http://localhost:%d", ws.port)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ws.logger.LogError(fmt.Errorf("web server: %w", err))
		}
	}()

	go func() {
		<-ctx.Done()
		ws.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the web server
func (ws *ViewServer) Shutdown() error {
	ws.mutex.Lock()
	if !ws.isRunning {
		ws.mutex.Unlock()
		return nil
	}
	ws.isRunning = false
	server := ws.server
	ws.mutex.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Hijacked connections are not closed by http.Server.Shutdown.
	ws.connections.Range(func(conn, _ interface{}) bool {
		if wsConn, ok := conn.(*websocket.Conn); ok {
			wsConn.Close()
		}
		return true
	})

	return server.Shutdown(ctx)
}

// IsRunning returns true if the web server is running
func (ws *ViewServer) IsRunning() bool {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()
	return ws.isRunning
}

// GetPort returns the port the web server is running on
func (ws *ViewServer) GetPort() int {
	return ws.port
}

// Goals returns the goal panel.
func (ws *ViewServer) Goals() *panel.GoalPanel {
	return ws.goals
}

// Perf returns the perf panel.
func (ws *ViewServer) Perf() *panel.PerfPanel {
	return ws.perf
}

func (ws *ViewServer) countConnections() int {
	count := 0
	ws.connections.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

func (ws *ViewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"port":        ws.port,
		"uptime":      time.Since(ws.startTime).String(),
		"connections": ws.countConnections(),
		"applied":     ws.applied.Load(),
		"discarded":   ws.discarded.Load(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// CheckPortAvailable checks if a port is available to bind to
func CheckPortAvailable(port int) bool {
	listener, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

// FindAvailablePort finds an available port starting from a base port
func FindAvailablePort(basePort int) int {
	port := basePort
	for port < basePort+100 {
		if CheckPortAvailable(port) {
			return port
		}
		port++
	}
	return basePort + 100
}
