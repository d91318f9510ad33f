package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hallcrawl/internal/config"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/keys"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/play"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/telnet"
	"github.com/cory-johannsen/hallcrawl/internal/frontend/view"
	"github.com/cory-johannsen/hallcrawl/internal/game/crawler"
	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
	"github.com/cory-johannsen/hallcrawl/internal/game/session"
	"github.com/cory-johannsen/hallcrawl/internal/observability"
	"github.com/cory-johannsen/hallcrawl/internal/records"
)

// GameHandler runs one independent playthrough per Telnet connection.
// It implements telnet.SessionHandler.
type GameHandler struct {
	game        crawler.Config
	frontend    config.FrontendConfig
	seed        uint64
	sessions    *session.Manager
	store       records.Store
	leaderboard int
	logger      *zap.Logger
}

// NewGameHandler creates a GameHandler.
//
// Precondition: game must be valid; sessions and logger must be non-nil.
// seed 0 seeds every playthrough from entropy.
func NewGameHandler(game crawler.Config, frontend config.FrontendConfig, seed uint64, sessions *session.Manager, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		game:     game,
		frontend: frontend,
		seed:     seed,
		sessions: sessions,
		logger:   logger,
	}
}

// RecordTo saves finished runs to store and shows the top leaderboard runs
// on the game-over screen. A nil store disables recording.
func (h *GameHandler) RecordTo(store records.Store, leaderboard int) {
	h.store = store
	h.leaderboard = leaderboard
}

// HandleSession registers the connection, then ticks its playthrough at the
// configured rate until the player quits or disconnects, ctx is cancelled, or
// the session registry closes the session.
//
// Postcondition: The session is unregistered and the screen restored.
func (h *GameHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	sess, err := h.sessions.Add(conn.RemoteAddr().String(), h.frontend.CueBuffer)
	if err != nil {
		_ = conn.WriteLine("The dungeon is full. Try again later.")
		return fmt.Errorf("admitting session: %w", err)
	}
	defer func() {
		_ = h.sessions.Remove(sess.ID)
	}()

	logger := observability.Session(h.logger, sess.ID).With(zap.String("remote_addr", sess.RemoteAddr))
	machine, err := crawler.New(h.game, crawler.Deps{
		Source:        play.NewSource(h.seed),
		FlickerSource: dice.NewEntropySource(),
		Sink:          sess.Cues,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("creating playthrough: %w", err)
	}
	logger.Info("playthrough session started", zap.String("playthrough", machine.PlaythroughID()))

	tracker := keys.NewTracker(h.frontend.HoldWindow)
	driver := play.NewDriver(machine, tracker, h.frontend, logger)
	driver.RecordTo(h.store, sess.RemoteAddr, h.leaderboard)

	readErr := make(chan error, 1)
	go func() {
		for {
			data, err := conn.ReadKeys()
			if err != nil {
				readErr <- err
				return
			}
			tracker.Feed(keys.Decode(data), time.Now())
		}
	}()

	if err := conn.WriteString(telnet.HideCursor + telnet.ClearScreen); err != nil {
		return err
	}
	defer func() {
		_ = conn.WriteString(telnet.ShowCursor + telnet.Reset + "\r\n")
	}()

	ticker := time.NewTicker(h.frontend.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine("\r\nThe dungeon is closing.")
			return ctx.Err()
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading keys: %w", err)
		case now := <-ticker.C:
			if sess.Cues.IsClosed() {
				logger.Info("session closed by server")
				return conn.WriteLine("\r\nThe dungeon is closing.")
			}
			frameDue := driver.Step(ctx, now)
			if machine.QuitRequested() {
				stats := machine.Stats()
				logger.Info("player quit",
					zap.String("playthrough", machine.PlaythroughID()),
					zap.Int("junctions", stats.Junctions),
					zap.Int("foes_defeated", stats.FoesDefeated),
				)
				_ = conn.WriteString(telnet.ClearScreen + telnet.CursorHome)
				return conn.WriteLine(fmt.Sprintf("You escaped after %d junctions. Farewell.", stats.Junctions))
			}
			if !frameDue {
				continue
			}
			if err := h.draw(conn, sess, driver); err != nil {
				return fmt.Errorf("writing frame: %w", err)
			}
		}
	}
}

// draw writes the current frame followed by any pending cue effects.
func (h *GameHandler) draw(conn *telnet.Conn, sess *session.Session, driver *play.Driver) error {
	scene := driver.Machine().Scene()
	sess.Publish(scene)

	frame := view.WithLeaderboard(view.Build(scene), scene, driver.Leaderboard())
	var b strings.Builder
	b.WriteString(telnet.Frame(RenderFrame(frame)))
	flash := false
	for _, ev := range sess.Cues.Drain() {
		fx := RenderCue(ev)
		b.WriteString(fx)
		flash = flash || strings.Contains(fx, telnet.Flash)
	}
	if flash {
		b.WriteString(telnet.Unflash)
	}
	return conn.WriteString(b.String())
}
