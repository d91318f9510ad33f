// Package web serves playthroughs to browsers over WebSocket.
package web

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/config"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/keys"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/play"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/view"
	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/game/session"
	"github.com/cory-johannsen/hallcrawl/internal/observability"
	"github.com/cory-johannsen/hallcrawl/internal/records"
)

// ErrServerStopped is returned by Serve after Stop.
var ErrServerStopped = errors.New("web server stopped")

const (
	writeWait     = 5 * time.Second
	shutdownWait  = 5 * time.Second
	headerTimeout = 10 * time.Second
)

//go:embed static/index.html
var indexHTML string

// Server runs one independent playthrough per WebSocket connection and serves
// the browser client at "/".
type Server struct {
	cfg         config.WebConfig
	game        crawler.Config
	frontend    config.FrontendConfig
	seed        uint64
	sessions    *session.Manager
	store       records.Store
	leaderboard int
	logger      *zap.Logger
	upgrader    websocket.Upgrader
	index       []byte

	ctx    context.Context
	cancel context.CancelFunc
	conns  sync.WaitGroup
	served atomic.Uint64

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	stopped  bool
}

// NewServer creates a Server.
//
// Precondition: cfg and game must be valid; sessions and logger must be non-nil.
func NewServer(cfg config.WebConfig, game crawler.Config, frontend config.FrontendConfig, seed uint64, sessions *session.Manager, logger *zap.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		game:     game,
		frontend: frontend,
		seed:     seed,
		sessions: sessions,
		logger:   logger,
		index:    []byte(strings.ReplaceAll(indexHTML, "{{WS_PATH}}", cfg.Path)),
		ctx:      ctx,
		cancel:   cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
	if len(cfg.AllowedOrigins) > 0 {
		s.upgrader.CheckOrigin = s.checkOrigin
	}
	return s
}

// RecordTo saves finished runs to store and shows the top leaderboard runs
// on the game-over screen. A nil store disables recording.
func (s *Server) RecordTo(store records.Store, leaderboard int) {
	s.store = store
	s.leaderboard = leaderboard
}

// checkOrigin admits requests without an Origin header and those from a
// configured origin. "*" admits every origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin) {
		return true
	}
	s.logger.Warn("websocket origin rejected",
		zap.String("origin", origin),
		zap.String("remote_addr", r.RemoteAddr),
	)
	return false
}

// Handler returns the HTTP handler serving the client page and the
// WebSocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.cfg.Path, s.handleUpgrade)
	mux.HandleFunc("/", s.handleIndex)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.index)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		http.Error(w, "server stopping", http.StatusServiceUnavailable)
		return
	}
	s.conns.Add(1)
	s.mu.Unlock()
	defer s.conns.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("websocket upgrade failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))
		return
	}
	defer conn.Close()
	s.served.Add(1)

	logger := s.logger.With(zap.String("remote_addr", r.RemoteAddr))
	logger.Info("websocket connected")
	if err := s.play(s.ctx, conn, r.RemoteAddr, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("websocket session error", zap.Error(err))
	}
	logger.Info("websocket disconnected")
}

// play runs one playthrough until the player quits, the browser goes away,
// the client idles out or ctx is cancelled.
//
// Postcondition: The session is unregistered.
func (s *Server) play(ctx context.Context, conn *websocket.Conn, remote string, logger *zap.Logger) error {
	sess, err := s.sessions.Add(remote, s.frontend.CueBuffer)
	if err != nil {
		_ = s.send(conn, Message{Type: TypeBye, Text: "The dungeon is full. Try again later."})
		s.closeWith(conn, websocket.CloseTryAgainLater, "full")
		return fmt.Errorf("admitting session: %w", err)
	}
	defer func() {
		_ = s.sessions.Remove(sess.ID)
	}()

	logger = observability.Session(logger, sess.ID)
	machine, err := crawler.New(s.game, crawler.Deps{
		Source:        play.NewSource(s.seed),
		FlickerSource: dice.NewEntropySource(),
		Sink:          sess.Cues,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("creating playthrough: %w", err)
	}

	tracker := keys.NewTracker(s.frontend.HoldWindow)
	driver := play.NewDriver(machine, tracker, s.frontend, logger)
	driver.RecordTo(s.store, remote, s.leaderboard)

	readErr := make(chan error, 1)
	go func() {
		for {
			if s.cfg.IdleTimeout > 0 {
				_ = conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
			}
			kind, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
				continue
			}
			tracker.Feed(keys.Decode(data), time.Now())
		}
	}()

	ticker := time.NewTicker(s.frontend.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeWith(conn, websocket.CloseGoingAway, "The dungeon is closing.")
			return ctx.Err()
		case err := <-readErr:
			var netErr net.Error
			switch {
			case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
				return nil
			case errors.As(err, &netErr) && netErr.Timeout():
				logger.Info("idle websocket dropped", zap.Duration("idle_timeout", s.cfg.IdleTimeout))
				s.closeWith(conn, websocket.CloseGoingAway, "idle")
				return nil
			default:
				return fmt.Errorf("reading keys: %w", err)
			}
		case now := <-ticker.C:
			if sess.Cues.IsClosed() {
				logger.Info("session closed by server")
				s.closeWith(conn, websocket.CloseGoingAway, "The dungeon is closing.")
				return nil
			}
			frameDue := driver.Step(ctx, now)
			if machine.QuitRequested() {
				stats := machine.Stats()
				logger.Info("player quit",
					zap.String("playthrough", machine.PlaythroughID()),
					zap.Int("junctions", stats.Junctions),
					zap.Int("foes_defeated", stats.FoesDefeated),
				)
				err := s.send(conn, Message{
					Type: TypeBye,
					Text: fmt.Sprintf("You escaped after %d junctions. Farewell.", stats.Junctions),
				})
				s.closeWith(conn, websocket.CloseNormalClosure, "")
				return err
			}
			if !frameDue {
				continue
			}
			scene := machine.Scene()
			sess.Publish(scene)
			frame := view.WithLeaderboard(view.Build(scene), scene, driver.Leaderboard())
			if err := s.send(conn, EncodeFrame(frame, sess.Cues.Drain())); err != nil {
				return fmt.Errorf("writing frame: %w", err)
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

func (s *Server) closeWith(conn *websocket.Conn, code int, text string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
}

// ListenAndServe binds the configured address and serves until Stop.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ln)
}

// Serve accepts HTTP connections on ln until Stop. It returns nil after Stop.
//
// Postcondition: ln is closed.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrServerStopped
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: headerTimeout,
		ErrorLog:          zap.NewStdLog(s.logger.Named("http")),
	}
	s.srv = srv
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("web frontend listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("path", s.cfg.Path),
	)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving web: %w", err)
	}
	return nil
}

// Addr returns the bound address, or "" before Serve.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Served returns how many WebSocket connections have been upgraded.
func (s *Server) Served() uint64 { return s.served.Load() }

// Stop closes the listener, ends every playthrough and waits for their
// handlers to return. Safe to call more than once.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	srv := s.srv
	s.mu.Unlock()

	s.cancel()
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Warn("web shutdown", zap.Error(err))
		}
	}
	s.conns.Wait()
	s.logger.Info("web frontend stopped")
}
