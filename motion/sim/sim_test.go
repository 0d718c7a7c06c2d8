package sim

import (
	"context"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/waypoints/arm"
	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/referenceframe"
	"go.viam.com/waypoints/spatialmath"
)

func newTestRobot(t *testing.T) *Robot {
	t.Helper()
	r, err := NewRobot(Config{Frame: referenceframe.World, Reach: 0.8}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return r
}

func TestNewRobotValidation(t *testing.T) {
	_, err := NewRobot(Config{Reach: 1}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewRobot(Config{Frame: referenceframe.World}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReachability(t *testing.T) {
	r := newTestRobot(t)
	ctx := context.Background()
	nearLeft := referenceframe.NewPoseInFrame(referenceframe.World, spatialmath.NewPoseFromPoint(r3.Vector{X: 0.4, Y: 0.5, Z: 0.8}))

	ok, err := r.CheckLeftArmIK(ctx, nearLeft)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)

	ok, err = r.CheckRightArmIK(ctx, nearLeft)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)

	elsewhere := referenceframe.NewPoseInFrame("/map", nearLeft.Pose())
	_, err = r.CheckLeftArmIK(ctx, elsewhere)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMovesUpdateGripper(t *testing.T) {
	r := newTestRobot(t)
	ctx := context.Background()
	target := r3.Vector{X: 0.5, Y: -0.2, Z: 0.7}

	ok, err := r.MoveArmNonCollision(ctx, arm.Right, target, spatialmath.NewZeroOrientation(), referenceframe.World, time.Second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
	gripper, err := r.GripperPose(ctx, arm.Right)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, gripper.Pose().Point(), test.ShouldResemble, target)

	ok, err = r.MoveArmNonCollision(ctx, arm.Right, r3.Vector{X: 5}, spatialmath.NewZeroOrientation(), referenceframe.World, time.Second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, r.Moves(), test.ShouldEqual, int64(1))
}

func TestCollisionFreeNeedsScene(t *testing.T) {
	r := newTestRobot(t)
	ctx := context.Background()
	target := r3.Vector{X: 0.5, Y: 0.2, Z: 0.7}

	_, err := r.MoveArmCollisionFree(ctx, arm.Left, target, spatialmath.NewZeroOrientation(), referenceframe.World, time.Second)
	test.That(t, errors.Is(err, ErrNoPlanningScene), test.ShouldBeTrue)

	test.That(t, r.RefreshPlanningScene(ctx), test.ShouldBeNil)
	test.That(t, r.SceneRefreshes(), test.ShouldEqual, int64(1))
	ok, err := r.MoveArmCollisionFree(ctx, arm.Left, target, spatialmath.NewZeroOrientation(), referenceframe.World, time.Second)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ok, test.ShouldBeTrue)
}

func TestPointHead(t *testing.T) {
	r := newTestRobot(t)
	test.That(t, r.PointHeadTo(context.Background(), r3.Vector{X: 1}, referenceframe.World, time.Second), test.ShouldBeNil)
	test.That(t, r.HeadTarget(), test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, r.PointHeadTo(context.Background(), r3.Vector{X: 2}, "/map", time.Second), test.ShouldNotBeNil)
	test.That(t, r.HeadTarget(), test.ShouldResemble, r3.Vector{X: 1})
}
