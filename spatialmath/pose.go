package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) meters and the Orientation() method
// returns a unit quaternion.
type Pose interface {
	Point() r3.Vector
	Orientation() quat.Number
}

type basePose struct {
	point       r3.Vector
	orientation quat.Number
}

// NewPose takes in a position and orientation and returns a Pose. The orientation is normalized.
func NewPose(p r3.Vector, o quat.Number) Pose {
	return &basePose{point: p, orientation: Normalize(o)}
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in.
func NewPoseFromPoint(point r3.Vector) Pose {
	return NewPose(point, NewZeroOrientation())
}

// NewZeroPose returns a pose at (0,0,0) with same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return NewPoseFromPoint(r3.Vector{})
}

func (p *basePose) Point() r3.Vector {
	return p.point
}

func (p *basePose) Orientation() quat.Number {
	return p.orientation
}

func (p *basePose) String() string {
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f QW:%.4f QX:%.4f QY:%.4f QZ:%.4f}",
		p.point.X, p.point.Y, p.point.Z,
		p.orientation.Real, p.orientation.Imag, p.orientation.Jmag, p.orientation.Kmag)
}

// Compose returns a pose that is the result of applying b in the frame of a.
func Compose(a, b Pose) Pose {
	q := a.Orientation()
	return NewPose(a.Point().Add(RotateVector(q, b.Point())), quat.Mul(q, b.Orientation()))
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), floatEpsilon) &&
		QuaternionAlmostEqual(a.Orientation(), b.Orientation(), floatEpsilon)
}
