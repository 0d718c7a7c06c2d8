// Package referenceframe packages poses with the name of the frame they were observed in.
package referenceframe

import (
	"fmt"

	"go.viam.com/waypoints/spatialmath"
)

// World is the name of the root frame of a robot.
const World = "/base_link"

// PoseInFrame is a data structure that packages a pose with the name of the
// frame in which it was observed.
type PoseInFrame struct {
	frame string
	pose  spatialmath.Pose
}

// NewPoseInFrame generates a new PoseInFrame.
func NewPoseInFrame(frame string, pose spatialmath.Pose) *PoseInFrame {
	return &PoseInFrame{
		frame: frame,
		pose:  pose,
	}
}

// FrameName returns the name of the frame in which the pose was observed.
func (pF *PoseInFrame) FrameName() string {
	return pF.frame
}

// Pose returns the pose that was observed.
func (pF *PoseInFrame) Pose() spatialmath.Pose {
	return pF.pose
}

// Transform expresses pF in the frame of tf, where tf is the pose of pF's frame in that frame.
func (pF *PoseInFrame) Transform(tf *PoseInFrame) *PoseInFrame {
	return NewPoseInFrame(tf.frame, spatialmath.Compose(tf.pose, pF.pose))
}

// AlmostEqual returns whether two PoseInFrames share a frame and have approximately the same pose.
func (pF *PoseInFrame) AlmostEqual(other *PoseInFrame) bool {
	return pF.FrameName() == other.FrameName() && spatialmath.PoseAlmostEqual(pF.Pose(), other.Pose())
}

func (pF *PoseInFrame) String() string {
	return fmt.Sprintf("%s@%v", pF.frame, pF.pose)
}
