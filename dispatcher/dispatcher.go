// Package dispatcher maps marker menu commands and drag feedback onto the waypoint store, the
// motion executor and the publisher, and serializes them with the publish tick.
package dispatcher

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/waypoints/arm"
	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/marker"
	"go.viam.com/waypoints/motion"
	"go.viam.com/waypoints/publish"
	"go.viam.com/waypoints/trajectory"
)

var (
	// ErrPoseUnreachable is returned when the feasibility gate rejects a waypoint.
	ErrPoseUnreachable = errors.New("pose unreachable")
	// ErrFrameMismatch is returned when a waypoint is not in the trajectory frame.
	ErrFrameMismatch = errors.New("pose is not in the trajectory frame")
)

// Durations are the times given to the backend for each kind of motion.
type Durations struct {
	// Move is used by the plan and move arm commands.
	Move time.Duration
	// Sequence is used for each waypoint during playback.
	Sequence time.Duration
	// Head is used when pointing the head.
	Head time.Duration
}

// DefaultDurations are used for zero fields of a Durations.
var DefaultDurations = Durations{Move: 2 * time.Second, Sequence: time.Second, Head: time.Second}

func (d Durations) withDefaults() Durations {
	if d.Move <= 0 {
		d.Move = DefaultDurations.Move
	}
	if d.Sequence <= 0 {
		d.Sequence = DefaultDurations.Sequence
	}
	if d.Head <= 0 {
		d.Head = DefaultDurations.Head
	}
	return d
}

// Dispatcher runs commands for one arm. It is not safe for concurrent use: a Session owns it and
// calls it from a single goroutine.
type Dispatcher struct {
	side      arm.Side
	store     *trajectory.Store
	route     *motion.Route
	gate      *motion.FeasibilityGate
	executor  *motion.Executor
	backend   motion.Planner
	marker    marker.Interactive
	publisher *publish.Publisher
	durations Durations
	logger    logging.Logger
}

// New returns a dispatcher for side whose trajectory is kept in frame. The arm routing is fixed
// here for the lifetime of the dispatcher.
func New(
	side arm.Side,
	frame string,
	backend motion.Backend,
	interactive marker.Interactive,
	publisher *publish.Publisher,
	durations Durations,
	logger logging.Logger,
) (*Dispatcher, error) {
	route, err := motion.NewRoute(side, backend)
	if err != nil {
		return nil, err
	}
	if interactive == nil {
		return nil, errors.New("marker is required")
	}
	if publisher == nil {
		return nil, errors.New("publisher is required")
	}
	durations = durations.withDefaults()
	return &Dispatcher{
		side:      side,
		store:     trajectory.NewStore(frame),
		route:     route,
		gate:      motion.NewFeasibilityGate(route, logger.Sublogger("gate")),
		executor:  motion.NewExecutor(route, durations.Sequence, logger.Sublogger("executor")),
		backend:   backend,
		marker:    interactive,
		publisher: publisher,
		durations: durations,
		logger:    logger,
	}, nil
}

// Side returns the arm this dispatcher drives.
func (d *Dispatcher) Side() arm.Side {
	return d.side
}

// Snapshot returns a copy of the trajectory.
func (d *Dispatcher) Snapshot() trajectory.Trajectory {
	return d.store.Snapshot()
}

// Handle runs cmd to completion.
func (d *Dispatcher) Handle(ctx context.Context, cmd Command) error {
	switch cmd {
	case PointHead:
		return d.pointHead(ctx)
	case AddPoint:
		return d.addPoint(ctx)
	case PlaceMarkerOverGripper:
		return d.placeMarkerOverGripper(ctx)
	case ExecuteTrajectory:
		return d.executor.ExecuteSequence(ctx, d.store.Snapshot())
	case MoveToTrajectoryStart:
		return d.executor.MoveToFirst(ctx, d.store.Snapshot())
	case ClearTrajectory:
		d.store.Clear()
		d.logger.Info("trajectory cleared")
		return nil
	case PublishTrajectory:
		return d.publisher.PublishTrajectory(ctx, d.store.Snapshot())
	case PlanArm:
		return d.moveToMarker(ctx, motion.CollisionAware)
	case MoveArm:
		return d.moveToMarker(ctx, motion.NonCollision)
	case UpdatePlanningScene:
		if err := d.backend.RefreshPlanningScene(ctx); err != nil {
			return errors.Wrap(err, "refreshing planning scene")
		}
		return nil
	default:
		return errors.Wrapf(ErrUnknownCommand, "%d", int(cmd))
	}
}

// HandleFeedback runs the command behind a menu selection. Drags need nothing beyond the pose
// update the marker server has already applied.
func (d *Dispatcher) HandleFeedback(ctx context.Context, feedback marker.Feedback) error {
	switch feedback.Type {
	case marker.PoseUpdate:
		d.logger.Debugw("marker moved", "pose", feedback.Pose)
		return nil
	case marker.MenuSelect:
		cmd, err := CommandFromMenuEntry(feedback.MenuEntryID)
		if err != nil {
			return err
		}
		return d.Handle(ctx, cmd)
	default:
		return errors.Errorf("unknown feedback type %d", int(feedback.Type))
	}
}

// Tick republishes the visualization of the current trajectory.
func (d *Dispatcher) Tick(ctx context.Context) error {
	return d.publisher.PublishVisualization(ctx, d.store.Snapshot())
}

// pointHead does not report backend failures to the operator.
func (d *Dispatcher) pointHead(ctx context.Context) error {
	pose, err := d.marker.CurrentPose()
	if err != nil {
		return err
	}
	if err := d.backend.PointHeadTo(ctx, pose.Pose().Point(), pose.FrameName(), d.durations.Head); err != nil {
		d.logger.Warnw("pointing head failed", "target", pose, "error", err)
	}
	return nil
}

func (d *Dispatcher) addPoint(ctx context.Context) error {
	pose, err := d.marker.CurrentPose()
	if err != nil {
		return err
	}
	if pose.FrameName() != d.store.Frame() {
		return errors.Wrapf(ErrFrameMismatch, "got %q, trajectory is in %q", pose.FrameName(), d.store.Frame())
	}
	reachable, err := d.gate.Check(ctx, pose)
	if err != nil {
		return errors.Wrap(err, "checking reachability")
	}
	if !reachable {
		return errors.Wrapf(ErrPoseUnreachable, "%s arm cannot reach %s", d.side, pose)
	}
	d.store.Append(pose.Pose())
	d.logger.Infow("waypoint added", "index", d.store.Len()-1, "pose", pose)
	return nil
}

func (d *Dispatcher) placeMarkerOverGripper(ctx context.Context) error {
	gripper, err := d.route.GripperPose(ctx)
	if err != nil {
		return errors.Wrapf(err, "getting %s gripper pose", d.side)
	}
	return d.marker.SetPose(ctx, gripper)
}

func (d *Dispatcher) moveToMarker(ctx context.Context, mode motion.Mode) error {
	pose, err := d.marker.CurrentPose()
	if err != nil {
		return err
	}
	return d.executor.MoveTo(ctx, pose, mode, d.durations.Move)
}
