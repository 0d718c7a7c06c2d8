// Package motion adapts an external reachability oracle and motion backend to a single arm.
//
// The backend owns inverse kinematics, collision-aware planning and actuation. This package only
// routes calls to the entry points of the arm chosen at construction and turns their boolean
// results into errors.
package motion

import (
	"context"
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/waypoints/arm"
	"go.viam.com/waypoints/referenceframe"
)

// IKChecker answers whether a pose is reachable by one arm. Left and right are distinct entry points.
type IKChecker interface {
	CheckLeftArmIK(ctx context.Context, pose *referenceframe.PoseInFrame) (bool, error)
	CheckRightArmIK(ctx context.Context, pose *referenceframe.PoseInFrame) (bool, error)
}

// Planner moves the robot. The boolean results report whether the motion succeeded.
type Planner interface {
	// MoveArmCollisionFree plans around the current planning scene before moving.
	MoveArmCollisionFree(
		ctx context.Context,
		side arm.Side,
		position r3.Vector,
		orientation quat.Number,
		frame string,
		duration time.Duration,
	) (bool, error)
	// MoveArmNonCollision moves directly to an inverse-kinematics solution.
	MoveArmNonCollision(
		ctx context.Context,
		side arm.Side,
		position r3.Vector,
		orientation quat.Number,
		frame string,
		duration time.Duration,
	) (bool, error)
	GripperPose(ctx context.Context, side arm.Side) (*referenceframe.PoseInFrame, error)
	PointHeadTo(ctx context.Context, position r3.Vector, frame string, duration time.Duration) error
	// RefreshPlanningScene takes a fresh static map and updates the planning scene from it.
	RefreshPlanningScene(ctx context.Context) error
}

// Backend is everything a session needs from the robot.
type Backend interface {
	IKChecker
	Planner
}

// Mode selects which kind of arm motion the backend performs.
type Mode int

const (
	// NonCollision moves directly via inverse kinematics without consulting the planning scene.
	NonCollision Mode = iota
	// CollisionAware plans a collision-free path using the planning scene.
	CollisionAware
)

func (m Mode) String() string {
	if m == CollisionAware {
		return "collision-aware"
	}
	return "non-collision"
}
