// Package inject provides injectable fakes of the external collaborators used in tests.
package inject

import (
	"context"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/waypoints/arm"
	"go.viam.com/waypoints/motion"
	"go.viam.com/waypoints/referenceframe"
)

var errNotInjected = errors.New("not injected")

// Backend is an injected motion backend.
type Backend struct {
	motion.Backend
	CheckLeftArmIKFunc       func(ctx context.Context, pose *referenceframe.PoseInFrame) (bool, error)
	CheckRightArmIKFunc      func(ctx context.Context, pose *referenceframe.PoseInFrame) (bool, error)
	MoveArmCollisionFreeFunc func(
		ctx context.Context,
		side arm.Side,
		position r3.Vector,
		orientation quat.Number,
		frame string,
		duration time.Duration,
	) (bool, error)
	MoveArmNonCollisionFunc func(
		ctx context.Context,
		side arm.Side,
		position r3.Vector,
		orientation quat.Number,
		frame string,
		duration time.Duration,
	) (bool, error)
	GripperPoseFunc          func(ctx context.Context, side arm.Side) (*referenceframe.PoseInFrame, error)
	PointHeadToFunc          func(ctx context.Context, position r3.Vector, frame string, duration time.Duration) error
	RefreshPlanningSceneFunc func(ctx context.Context) error
}

// CheckLeftArmIK calls the injected CheckLeftArmIK or the real version.
func (b *Backend) CheckLeftArmIK(ctx context.Context, pose *referenceframe.PoseInFrame) (bool, error) {
	if b.CheckLeftArmIKFunc == nil {
		if b.Backend == nil {
			return false, errNotInjected
		}
		return b.Backend.CheckLeftArmIK(ctx, pose)
	}
	return b.CheckLeftArmIKFunc(ctx, pose)
}

// CheckRightArmIK calls the injected CheckRightArmIK or the real version.
func (b *Backend) CheckRightArmIK(ctx context.Context, pose *referenceframe.PoseInFrame) (bool, error) {
	if b.CheckRightArmIKFunc == nil {
		if b.Backend == nil {
			return false, errNotInjected
		}
		return b.Backend.CheckRightArmIK(ctx, pose)
	}
	return b.CheckRightArmIKFunc(ctx, pose)
}

// MoveArmCollisionFree calls the injected MoveArmCollisionFree or the real version.
func (b *Backend) MoveArmCollisionFree(
	ctx context.Context,
	side arm.Side,
	position r3.Vector,
	orientation quat.Number,
	frame string,
	duration time.Duration,
) (bool, error) {
	if b.MoveArmCollisionFreeFunc == nil {
		if b.Backend == nil {
			return false, errNotInjected
		}
		return b.Backend.MoveArmCollisionFree(ctx, side, position, orientation, frame, duration)
	}
	return b.MoveArmCollisionFreeFunc(ctx, side, position, orientation, frame, duration)
}

// MoveArmNonCollision calls the injected MoveArmNonCollision or the real version.
func (b *Backend) MoveArmNonCollision(
	ctx context.Context,
	side arm.Side,
	position r3.Vector,
	orientation quat.Number,
	frame string,
	duration time.Duration,
) (bool, error) {
	if b.MoveArmNonCollisionFunc == nil {
		if b.Backend == nil {
			return false, errNotInjected
		}
		return b.Backend.MoveArmNonCollision(ctx, side, position, orientation, frame, duration)
	}
	return b.MoveArmNonCollisionFunc(ctx, side, position, orientation, frame, duration)
}

// GripperPose calls the injected GripperPose or the real version.
func (b *Backend) GripperPose(ctx context.Context, side arm.Side) (*referenceframe.PoseInFrame, error) {
	if b.GripperPoseFunc == nil {
		if b.Backend == nil {
			return nil, errNotInjected
		}
		return b.Backend.GripperPose(ctx, side)
	}
	return b.GripperPoseFunc(ctx, side)
}

// PointHeadTo calls the injected PointHeadTo or the real version.
func (b *Backend) PointHeadTo(ctx context.Context, position r3.Vector, frame string, duration time.Duration) error {
	if b.PointHeadToFunc == nil {
		if b.Backend == nil {
			return errNotInjected
		}
		return b.Backend.PointHeadTo(ctx, position, frame, duration)
	}
	return b.PointHeadToFunc(ctx, position, frame, duration)
}

// RefreshPlanningScene calls the injected RefreshPlanningScene or the real version.
func (b *Backend) RefreshPlanningScene(ctx context.Context) error {
	if b.RefreshPlanningSceneFunc == nil {
		if b.Backend == nil {
			return errNotInjected
		}
		return b.Backend.RefreshPlanningScene(ctx)
	}
	return b.RefreshPlanningSceneFunc(ctx)
}
