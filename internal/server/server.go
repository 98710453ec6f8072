// Package server exposes pointer and screen operations over a loopback HTTP
// listener.
package server

import (
	"fmt"
	"image"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	"sweeperctl/internal/capture"
	"sweeperctl/internal/clients"
	t "sweeperctl/internal/types"
)

// Pointer is the input side of the adapter.
type Pointer interface {
	MoveTo(x, y int) error
	Location() (t.Location, error)
	Click() error
}

// Screen is the display side of the adapter.
type Screen interface {
	Bounds() image.Rectangle
	Capture(rect image.Rectangle) (*image.RGBA, error)
}

type Config struct {
	Pointer Pointer
	Screen  Screen
	Logger  *slog.Logger

	SettleDelay time.Duration
	StopDelay   time.Duration

	// ControlSocket registers /ws when set.
	ControlSocket bool
	Manager       *clients.Manager

	// Exit terminates the process after /stop has responded.
	Exit func(code int)
}

// Server routes requests to the adapter. Pointer sequences and captures are
// serialized so concurrent callers never interleave them.
type Server struct {
	cfg     Config
	log     *slog.Logger
	mu      sync.Mutex
	handler http.Handler
}

func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Manager == nil {
		cfg.Manager = clients.NewManager()
	}
	s := &Server{cfg: cfg, log: cfg.Logger}

	r := mux.NewRouter()
	for path, h := range s.routes() {
		r.HandleFunc(path, h)
	}
	r.NotFoundHandler = http.HandlerFunc(http.NotFound)

	s.handler = s.loggingMiddleware(s.recoverMiddleware(r))
	return s
}

// routes is the fixed path table. Paths match exactly.
func (s *Server) routes() map[string]http.HandlerFunc {
	routes := map[string]http.HandlerFunc{
		"/screencap":  s.handle(s.handleScreencap),
		"/mousemove":  s.handle(s.handleMouseMove),
		"/mouseclick": s.handle(s.handleMouseClick),
		"/stop":       s.handleStop,
	}
	if s.cfg.ControlSocket {
		routes["/ws"] = s.handleWS
	}
	return routes
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler { return s.handler }

// Manager returns the control connection registry.
func (s *Server) Manager() *clients.Manager { return s.cfg.Manager }

// Listen binds addr and caps the number of simultaneously served
// connections at backlog.
func Listen(addr string, backlog int) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	if backlog > 0 {
		ln = netutil.LimitListener(ln, backlog)
	}
	return ln, nil
}

// HTTPServer wraps h with timeouts so idle keep-alive or stalled clients give
// their slot under the Listen cap back instead of holding it forever.
func HTTPServer(h http.Handler, idle time.Duration) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       idle,
	}
}

func (s *Server) moveTo(x, y int) (t.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cfg.Pointer.MoveTo(x, y); err != nil {
		return t.Location{}, err
	}
	if s.cfg.SettleDelay > 0 {
		time.Sleep(s.cfg.SettleDelay)
	}
	return s.cfg.Pointer.Location()
}

func (s *Server) click() (t.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cfg.Pointer.Click(); err != nil {
		return t.Location{}, err
	}
	return s.cfg.Pointer.Location()
}

func (s *Server) location() (t.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Pointer.Location()
}

func (s *Server) screencap(rect image.Rectangle) ([]byte, error) {
	s.mu.Lock()
	img, err := s.cfg.Screen.Capture(rect)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return capture.EncodePNG(img)
}
