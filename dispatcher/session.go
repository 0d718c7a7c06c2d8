package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/marker"
	"go.viam.com/waypoints/trajectory"
	"go.viam.com/waypoints/utils"
)

// ErrSessionClosed is returned for work submitted to a session that is not running.
var ErrSessionClosed = errors.New("session closed")

// DefaultPublishRate is the visualization publish rate in Hz.
const DefaultPublishRate = 5.0

type event struct {
	name string
	run  func(ctx context.Context) error
	done chan error
}

// Session serializes commands, marker feedback and the publish tick onto one goroutine, so no
// handler or tick ever sees the trajectory concurrently. A command runs to completion before the
// next event is taken; a tick that falls due meanwhile runs right after it.
type Session struct {
	dispatcher *Dispatcher
	clock      clock.Clock
	period     time.Duration
	logger     logging.Logger

	events  chan event
	stopped chan struct{}

	mu      sync.Mutex
	workers *utils.StoppableWorkers
}

// NewSession returns a session around d that ticks every period.
func NewSession(d *Dispatcher, clk clock.Clock, period time.Duration, logger logging.Logger) *Session {
	if period <= 0 {
		period = time.Duration(float64(time.Second) / DefaultPublishRate)
	}
	return &Session{
		dispatcher: d,
		clock:      clk,
		period:     period,
		logger:     logger,
		events:     make(chan event),
		stopped:    make(chan struct{}),
	}
}

// Period returns the tick period, which is also the lifetime of published visualization markers.
func (s *Session) Period() time.Duration {
	return s.period
}

// Start runs the session loop until ctx is done or Close is called. Only the first call has
// any effect.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workers != nil {
		return
	}
	ticker := s.clock.Ticker(s.period)
	s.workers = utils.NewStoppableWorkers(ctx, func(ctx context.Context) {
		defer close(s.stopped)
		defer ticker.Stop()
		s.run(ctx, ticker.C)
	})
}

// Done is closed once the session loop has returned. It is already closed for a session that
// was never started.
func (s *Session) Done() <-chan struct{} {
	if s.running() == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return s.stopped
}

// Close stops the loop and waits for it to return.
func (s *Session) Close() {
	if workers := s.running(); workers != nil {
		workers.Stop()
	}
}

func (s *Session) running() *utils.StoppableWorkers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workers
}

func (s *Session) run(ctx context.Context, ticks <-chan time.Time) {
	s.logger.Infow("session started", "side", s.dispatcher.Side(), "period", s.period)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session stopped")
			return
		case ev := <-s.events:
			s.handle(ctx, ev)
			// A tick that fell due during the event goes before any queued event.
			select {
			case <-ticks:
				s.tick(ctx)
			default:
			}
		case <-ticks:
			s.tick(ctx)
		}
	}
}

func (s *Session) handle(ctx context.Context, ev event) {
	err := ev.run(ctx)
	if err != nil {
		s.logger.Errorw("command failed", "command", ev.name, "error", err)
	}
	ev.done <- err
}

func (s *Session) tick(ctx context.Context) {
	if err := s.dispatcher.Tick(ctx); err != nil {
		s.logger.Warnw("publishing visualization failed", "error", err)
	}
}

// do hands fn to the session goroutine and waits for its result.
func (s *Session) do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	workers := s.running()
	if workers == nil {
		return ErrSessionClosed
	}
	stopped := workers.Context().Done()
	ev := event{name: name, run: fn, done: make(chan error, 1)}
	select {
	case s.events <- ev:
	case <-stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-ev.done:
		return err
	case <-stopped:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit runs cmd on the session and returns its outcome.
func (s *Session) Submit(ctx context.Context, cmd Command) error {
	return s.do(ctx, cmd.String(), func(ctx context.Context) error {
		return s.dispatcher.Handle(ctx, cmd)
	})
}

// HandleFeedback runs feedback on the session. It is the marker server's feedback handler.
func (s *Session) HandleFeedback(ctx context.Context, feedback marker.Feedback) error {
	name := "pose update"
	if feedback.Type == marker.MenuSelect {
		if cmd, err := CommandFromMenuEntry(feedback.MenuEntryID); err == nil {
			name = cmd.String()
		}
	}
	return s.do(ctx, name, func(ctx context.Context) error {
		return s.dispatcher.HandleFeedback(ctx, feedback)
	})
}

// Trajectory returns a snapshot of the trajectory taken on the session goroutine.
func (s *Session) Trajectory(ctx context.Context) (trajectory.Trajectory, error) {
	var snapshot trajectory.Trajectory
	err := s.do(ctx, "snapshot", func(ctx context.Context) error {
		snapshot = s.dispatcher.Snapshot()
		return nil
	})
	return snapshot, err
}
