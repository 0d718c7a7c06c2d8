// Package trajectory holds the ordered waypoints an operator has accepted for one arm.
package trajectory

import (
	"go.viam.com/waypoints/referenceframe"
	"go.viam.com/waypoints/spatialmath"
)

// Trajectory is an ordered sequence of waypoints that all share one reference frame.
type Trajectory struct {
	Frame     string
	Waypoints []spatialmath.Pose
}

// Len returns the number of waypoints.
func (t Trajectory) Len() int {
	return len(t.Waypoints)
}

// Empty returns whether the trajectory has no waypoints.
func (t Trajectory) Empty() bool {
	return len(t.Waypoints) == 0
}

// PoseInFrame returns waypoint i tagged with the trajectory's frame.
func (t Trajectory) PoseInFrame(i int) *referenceframe.PoseInFrame {
	return referenceframe.NewPoseInFrame(t.Frame, t.Waypoints[i])
}

// Store is the mutable, append-only waypoint sequence of a session. It performs no validation
// and no locking: it is owned by the session goroutine.
type Store struct {
	frame     string
	waypoints []spatialmath.Pose
}

// NewStore returns an empty store whose waypoints are expressed in frame.
func NewStore(frame string) *Store {
	return &Store{frame: frame}
}

// Frame returns the reference frame shared by every waypoint.
func (s *Store) Frame() string {
	return s.frame
}

// Append adds a waypoint to the end of the sequence.
func (s *Store) Append(waypoint spatialmath.Pose) {
	s.waypoints = append(s.waypoints, waypoint)
}

// Clear empties the sequence. Clearing an empty store is a no-op.
func (s *Store) Clear() {
	s.waypoints = nil
}

// Len returns the number of stored waypoints.
func (s *Store) Len() int {
	return len(s.waypoints)
}

// Snapshot returns a copy of the current sequence; later mutations of the store do not affect it.
func (s *Store) Snapshot() Trajectory {
	waypoints := make([]spatialmath.Pose, len(s.waypoints))
	copy(waypoints, s.waypoints)
	return Trajectory{Frame: s.frame, Waypoints: waypoints}
}
