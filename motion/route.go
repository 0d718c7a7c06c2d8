package motion

import (
	"context"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/waypoints/arm"
	"go.viam.com/waypoints/referenceframe"
)

type moveFunc func(
	ctx context.Context,
	position r3.Vector,
	orientation quat.Number,
	frame string,
	duration time.Duration,
) (bool, error)

// Route binds every arm-specific backend entry point for one side. It is built once and never
// re-routed, so handlers never branch on the side.
type Route struct {
	Side        arm.Side
	CheckIK     func(ctx context.Context, pose *referenceframe.PoseInFrame) (bool, error)
	Move        map[Mode]moveFunc
	GripperPose func(ctx context.Context) (*referenceframe.PoseInFrame, error)
}

// NewRoute builds the routing table for side.
func NewRoute(side arm.Side, backend Backend) (*Route, error) {
	if backend == nil {
		return nil, errors.New("motion backend is required")
	}

	var checkIK func(ctx context.Context, pose *referenceframe.PoseInFrame) (bool, error)
	switch side {
	case arm.Left:
		checkIK = backend.CheckLeftArmIK
	case arm.Right:
		checkIK = backend.CheckRightArmIK
	default:
		return nil, errors.Wrapf(arm.ErrInvalidSide, "cannot route side %d", int(side))
	}

	bind := func(move func(context.Context, arm.Side, r3.Vector, quat.Number, string, time.Duration) (bool, error)) moveFunc {
		return func(ctx context.Context, position r3.Vector, orientation quat.Number, frame string, duration time.Duration) (bool, error) {
			return move(ctx, side, position, orientation, frame, duration)
		}
	}

	return &Route{
		Side:    side,
		CheckIK: checkIK,
		Move: map[Mode]moveFunc{
			NonCollision:   bind(backend.MoveArmNonCollision),
			CollisionAware: bind(backend.MoveArmCollisionFree),
		},
		GripperPose: func(ctx context.Context) (*referenceframe.PoseInFrame, error) {
			return backend.GripperPose(ctx, side)
		},
	}, nil
}
