// Package sim implements a simulated dual-arm motion backend so a session can run without a robot.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/waypoints/arm"
	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/motion"
	"go.viam.com/waypoints/referenceframe"
	"go.viam.com/waypoints/spatialmath"
)

// ErrNoPlanningScene is returned by collision-aware moves before the planning scene was refreshed.
var ErrNoPlanningScene = errors.New("planning scene has not been taken yet")

// shoulders are the arm base positions in the robot's root frame, in meters.
var shoulders = map[arm.Side]r3.Vector{
	arm.Left:  {X: -0.05, Y: 0.188, Z: 0.8},
	arm.Right: {X: -0.05, Y: -0.188, Z: 0.8},
}

// Config configures the simulated robot.
type Config struct {
	Frame string
	// Reach is the distance from a shoulder, in meters, within which a pose is reachable.
	Reach float64
}

// Robot is a fake robot whose arms can reach anything within a sphere around each shoulder.
// Successful moves teleport the gripper; durations are logged but not waited on.
type Robot struct {
	cfg    Config
	logger logging.Logger

	mu       sync.Mutex
	grippers map[arm.Side]spatialmath.Pose
	head     r3.Vector

	moves          atomic.Int64
	sceneRefreshes atomic.Int64
}

var _ motion.Backend = (*Robot)(nil)

// NewRobot returns a simulated robot with both grippers in front of their shoulders.
func NewRobot(cfg Config, logger logging.Logger) (*Robot, error) {
	if cfg.Frame == "" {
		return nil, errors.New("sim robot needs a frame")
	}
	if cfg.Reach <= 0 {
		return nil, errors.Errorf("sim robot reach must be positive, got %v", cfg.Reach)
	}
	grippers := make(map[arm.Side]spatialmath.Pose, len(shoulders))
	for side, shoulder := range shoulders {
		grippers[side] = spatialmath.NewPoseFromPoint(shoulder.Add(r3.Vector{X: cfg.Reach / 2}))
	}
	return &Robot{cfg: cfg, logger: logger, grippers: grippers}, nil
}

func (r *Robot) reachable(side arm.Side, pose *referenceframe.PoseInFrame) (bool, error) {
	if pose.FrameName() != r.cfg.Frame {
		return false, errors.Errorf("unknown frame %q, sim robot only knows %q", pose.FrameName(), r.cfg.Frame)
	}
	shoulder, ok := shoulders[side]
	if !ok {
		return false, errors.Wrapf(arm.ErrInvalidSide, "side %d", int(side))
	}
	return pose.Pose().Point().Sub(shoulder).Norm() <= r.cfg.Reach, nil
}

// CheckLeftArmIK reports whether the left arm can reach pose.
func (r *Robot) CheckLeftArmIK(ctx context.Context, pose *referenceframe.PoseInFrame) (bool, error) {
	return r.reachable(arm.Left, pose)
}

// CheckRightArmIK reports whether the right arm can reach pose.
func (r *Robot) CheckRightArmIK(ctx context.Context, pose *referenceframe.PoseInFrame) (bool, error) {
	return r.reachable(arm.Right, pose)
}

func (r *Robot) move(
	side arm.Side,
	position r3.Vector,
	orientation quat.Number,
	frame string,
	duration time.Duration,
) (bool, error) {
	target := referenceframe.NewPoseInFrame(frame, spatialmath.NewPose(position, orientation))
	ok, err := r.reachable(side, target)
	if err != nil || !ok {
		return false, err
	}
	r.mu.Lock()
	r.grippers[side] = target.Pose()
	r.mu.Unlock()
	r.moves.Inc()
	r.logger.Debugw("sim arm moved", "side", side, "pose", target, "duration", duration)
	return true, nil
}

// MoveArmCollisionFree moves the gripper if the planning scene was taken and the pose is reachable.
func (r *Robot) MoveArmCollisionFree(
	ctx context.Context,
	side arm.Side,
	position r3.Vector,
	orientation quat.Number,
	frame string,
	duration time.Duration,
) (bool, error) {
	if r.sceneRefreshes.Load() == 0 {
		return false, ErrNoPlanningScene
	}
	return r.move(side, position, orientation, frame, duration)
}

// MoveArmNonCollision moves the gripper if the pose is reachable.
func (r *Robot) MoveArmNonCollision(
	ctx context.Context,
	side arm.Side,
	position r3.Vector,
	orientation quat.Number,
	frame string,
	duration time.Duration,
) (bool, error) {
	return r.move(side, position, orientation, frame, duration)
}

// GripperPose returns the last pose the gripper was moved to.
func (r *Robot) GripperPose(ctx context.Context, side arm.Side) (*referenceframe.PoseInFrame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pose, ok := r.grippers[side]
	if !ok {
		return nil, errors.Wrapf(arm.ErrInvalidSide, "side %d", int(side))
	}
	return referenceframe.NewPoseInFrame(r.cfg.Frame, pose), nil
}

// PointHeadTo records where the head is looking.
func (r *Robot) PointHeadTo(ctx context.Context, position r3.Vector, frame string, duration time.Duration) error {
	if frame != r.cfg.Frame {
		return errors.Errorf("unknown frame %q, sim robot only knows %q", frame, r.cfg.Frame)
	}
	r.mu.Lock()
	r.head = position
	r.mu.Unlock()
	r.logger.Debugw("sim head pointed", "target", position, "duration", duration)
	return nil
}

// RefreshPlanningScene marks the planning scene as taken.
func (r *Robot) RefreshPlanningScene(ctx context.Context) error {
	r.sceneRefreshes.Inc()
	r.logger.Debug("sim planning scene refreshed")
	return nil
}

// HeadTarget returns where the head was last pointed.
func (r *Robot) HeadTarget() r3.Vector {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.head
}

// Moves returns the number of successful arm moves.
func (r *Robot) Moves() int64 {
	return r.moves.Load()
}

// SceneRefreshes returns how many times the planning scene was refreshed.
func (r *Robot) SceneRefreshes() int64 {
	return r.sceneRefreshes.Load()
}
