package motion

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/referenceframe"
	"go.viam.com/waypoints/trajectory"
)

var (
	// ErrMotionFailed is returned when the backend reports it could not complete a move.
	ErrMotionFailed = errors.New("motion failed")
	// ErrEmptyTrajectory is returned when moving to the start of a trajectory with no waypoints.
	ErrEmptyTrajectory = errors.New("empty trajectory")
)

// SequenceError reports the waypoint at which trajectory execution stopped. Waypoints before Index
// were executed; waypoints after it were not attempted.
type SequenceError struct {
	Index int
	Err   error
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("motion failed at waypoint %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying failure.
func (e *SequenceError) Unwrap() error {
	return e.Err
}

// Executor drives the routed arm through single poses or whole trajectories.
type Executor struct {
	route            *Route
	sequenceDuration time.Duration
	logger           logging.Logger
}

// NewExecutor returns an executor that gives each trajectory waypoint sequenceDuration to complete.
func NewExecutor(route *Route, sequenceDuration time.Duration, logger logging.Logger) *Executor {
	return &Executor{route: route, sequenceDuration: sequenceDuration, logger: logger}
}

// MoveTo moves the routed arm to pose using the given mode. A backend that reports failure without
// an error yields ErrMotionFailed.
func (e *Executor) MoveTo(ctx context.Context, pose *referenceframe.PoseInFrame, mode Mode, duration time.Duration) error {
	move, ok := e.route.Move[mode]
	if !ok {
		return errors.Errorf("unknown motion mode %d", int(mode))
	}
	e.logger.Infow("moving arm", "side", e.route.Side, "mode", mode, "pose", pose)
	succeeded, err := move(ctx, pose.Pose().Point(), pose.Pose().Orientation(), pose.FrameName(), duration)
	if err != nil {
		return errors.Wrapf(err, "%s move of %s arm", mode, e.route.Side)
	}
	if !succeeded {
		return errors.Wrapf(ErrMotionFailed, "%s move of %s arm", mode, e.route.Side)
	}
	return nil
}

// ExecuteSequence moves through the waypoints in order without collision checking, stopping at the
// first failure. Progress made before the failure is left in place.
func (e *Executor) ExecuteSequence(ctx context.Context, traj trajectory.Trajectory) error {
	for i := range traj.Waypoints {
		if err := ctx.Err(); err != nil {
			return &SequenceError{Index: i, Err: err}
		}
		if err := e.MoveTo(ctx, traj.PoseInFrame(i), NonCollision, e.sequenceDuration); err != nil {
			return &SequenceError{Index: i, Err: err}
		}
	}
	e.logger.Infow("trajectory executed", "side", e.route.Side, "waypoints", traj.Len())
	return nil
}

// MoveToFirst moves to the first waypoint only. It returns ErrEmptyTrajectory without touching the
// backend if there are no waypoints.
func (e *Executor) MoveToFirst(ctx context.Context, traj trajectory.Trajectory) error {
	if traj.Empty() {
		return ErrEmptyTrajectory
	}
	return e.MoveTo(ctx, traj.PoseInFrame(0), NonCollision, e.sequenceDuration)
}
