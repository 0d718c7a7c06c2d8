package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/waypoints/spatialmath"
)

func TestPoseInFrameAlmostEqual(t *testing.T) {
	p := spatialmath.NewPoseFromPoint(r3.Vector{X: 0.5})
	a := NewPoseInFrame(World, p)
	b := NewPoseInFrame(World, spatialmath.NewPoseFromPoint(r3.Vector{X: 0.5 + 1e-9}))
	c := NewPoseInFrame("/torso_lift_link", p)

	test.That(t, a.AlmostEqual(b), test.ShouldBeTrue)
	test.That(t, a.AlmostEqual(c), test.ShouldBeFalse)
	test.That(t, a.FrameName(), test.ShouldEqual, World)
}

func TestPoseInFrameTransform(t *testing.T) {
	torso := NewPoseInFrame(World, spatialmath.NewPose(
		r3.Vector{Z: 1},
		spatialmath.AxisAngleToQuat(r3.Vector{Z: 1}, math.Pi),
	))
	inTorso := NewPoseInFrame("/torso_lift_link", spatialmath.NewPoseFromPoint(r3.Vector{X: 0.3}))

	inWorld := inTorso.Transform(torso)
	test.That(t, inWorld.FrameName(), test.ShouldEqual, World)
	test.That(t, spatialmath.R3VectorAlmostEqual(inWorld.Pose().Point(), r3.Vector{X: -0.3, Z: 1}, 1e-9), test.ShouldBeTrue)
}
