package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/config"
)

// SessionHandler runs one connected client's playthrough.
// HandleSession returns when the client leaves or ctx is cancelled.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// ErrAcceptorStopped is returned by Serve once Stop has been called.
var ErrAcceptorStopped = errors.New("telnet: acceptor stopped")

// Acceptor hands every accepted TCP connection to a SessionHandler in its
// own goroutine, after switching the client to character mode.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	stopped  bool
	quit     chan struct{}
	sessions sync.WaitGroup

	active atomic.Int32
	served atomic.Uint64
	panics atomic.Uint64
}

// NewAcceptor creates an Acceptor.
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		quit:    make(chan struct{}),
	}
}

// ListenAndServe binds cfg.Addr() and serves until Stop is called.
// Stopping is not an error: it returns nil.
func (a *Acceptor) ListenAndServe() error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}
	if err := a.Serve(ln); !errors.Is(err, ErrAcceptorStopped) {
		return err
	}
	return nil
}

// Serve accepts connections on ln until Stop is called, then returns
// ErrAcceptorStopped. Serve takes ownership of ln.
//
// Precondition: Serve must be called at most once.
func (a *Acceptor) Serve(ln net.Listener) error {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		_ = ln.Close()
		return ErrAcceptorStopped
	}
	a.listener = ln
	a.mu.Unlock()

	a.logger.Info("telnet acceptor listening", zap.String("addr", ln.Addr().String()))

	var backoff time.Duration
	for {
		raw, err := ln.Accept()
		if err != nil {
			select {
			case <-a.quit:
				return ErrAcceptorStopped
			default:
			}
			// Transient accept failures (fd exhaustion) back off instead of spinning.
			backoff = min(max(2*backoff, 5*time.Millisecond), time.Second)
			a.logger.Error("accepting connection", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		a.sessions.Add(1)
		go a.serveConn(raw, a.served.Add(1))
	}
}

// serveConn negotiates character mode and runs the handler for one client.
func (a *Acceptor) serveConn(raw net.Conn, seq uint64) {
	defer a.sessions.Done()
	a.active.Add(1)
	defer a.active.Add(-1)

	start := time.Now()
	log := a.logger.With(zap.Uint64("conn", seq), zap.String("remote_addr", raw.RemoteAddr().String()))
	log.Info("client connected")

	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
	defer conn.Close()

	if err := conn.Negotiate(); err != nil {
		log.Warn("telnet negotiation failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A blocked read only returns once the connection closes, so stopping
	// the acceptor closes it as well as cancelling the handler.
	go func() {
		select {
		case <-a.quit:
			cancel()
			_ = conn.Close()
		case <-ctx.Done():
		}
	}()

	err := a.runHandler(ctx, conn, log)
	fields := []zap.Field{zap.Duration("duration", time.Since(start))}
	if err != nil {
		log.Debug("session ended", append(fields, zap.Error(err))...)
		return
	}
	log.Info("session ended cleanly", fields...)
}

// runHandler contains a handler panic to its own connection.
func (a *Acceptor) runHandler(ctx context.Context, conn *Conn, log *zap.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.panics.Add(1)
			log.Error("session handler panicked", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("session handler panic: %v", r)
		}
	}()
	return a.handler.HandleSession(ctx, conn)
}

// Stop closes the listener, cancels every live session and waits for their
// handlers to return. Calling Stop more than once, or before Serve, is safe.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	close(a.quit)
	if a.listener != nil {
		_ = a.listener.Close()
	}
	a.mu.Unlock()

	a.sessions.Wait()
	a.logger.Info("telnet acceptor stopped",
		zap.Uint64("served", a.served.Load()),
		zap.Uint64("panics", a.panics.Load()),
	)
}

// Addr returns the listening address, or "" before Serve starts.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// IsRunning reports whether the acceptor is accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listener != nil && !a.stopped
}

// Active returns the number of connections currently being served.
func (a *Acceptor) Active() int {
	return int(a.active.Load())
}

// Served returns the number of connections accepted so far.
func (a *Acceptor) Served() uint64 {
	return a.served.Load()
}
