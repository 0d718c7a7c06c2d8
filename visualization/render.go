// Package visualization turns a trajectory into the marker set that displays it.
package visualization

import (
	"math"
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/waypoints/ros"
	"go.viam.com/waypoints/spatialmath"
	"go.viam.com/waypoints/trajectory"
)

const (
	// PathNamespace holds the single polyline through all waypoints.
	PathNamespace = "path"
	// AxesNamespace holds three arrows per waypoint.
	AxesNamespace = "axes"
	// PathID is the id of the path marker; axis ids start right after it.
	PathID = 0
	// AxesPerWaypoint is the number of axis markers drawn for each waypoint.
	AxesPerWaypoint = 3

	pathWidth    = 0.01
	axisLength   = 0.1
	axisDiameter = 0.01
)

var (
	pathColor = ros.ColorRGBA{R: 1, G: 0, B: 1, A: 1}

	// Arrows point along their pose's x axis, so the y and z arrows are rotated onto it.
	axes = []struct {
		rotation quat.Number
		color    ros.ColorRGBA
	}{
		{spatialmath.NewZeroOrientation(), ros.ColorRGBA{R: 1, A: 1}},
		{spatialmath.AxisAngleToQuat(r3.Vector{Z: 1}, math.Pi/2), ros.ColorRGBA{G: 1, A: 1}},
		{spatialmath.AxisAngleToQuat(r3.Vector{Y: 1}, -math.Pi/2), ros.ColorRGBA{B: 1, A: 1}},
	}
)

// AxisID returns the id of axis (0, 1 or 2 for x, y, z) of waypoint index.
func AxisID(index, axis int) int {
	return PathID + 1 + AxesPerWaypoint*index + axis
}

// Render builds the full marker set for traj. It is a pure function of its inputs: ids depend only
// on waypoint positions in the sequence, so a renderer whose markers expire after lifetime sees
// stale waypoints disappear without flicker. An empty trajectory renders no markers.
func Render(traj trajectory.Trajectory, lifetime time.Duration) ros.MarkerArray {
	if traj.Empty() {
		return ros.MarkerArray{Markers: []ros.Marker{}}
	}
	header := ros.Header{FrameID: traj.Frame}
	markers := make([]ros.Marker, 0, AxesPerWaypoint*traj.Len()+1)

	path := ros.Marker{
		Header:    header,
		Namespace: PathNamespace,
		ID:        PathID,
		Type:      ros.LineStrip,
		Action:    ros.Add,
		Pose:      ros.PoseFromSpatial(spatialmath.NewZeroPose()),
		Scale:     ros.Vector3{X: pathWidth},
		Color:     pathColor,
		Lifetime:  lifetime,
		Points:    make([]ros.Point, 0, traj.Len()),
	}

	for i, waypoint := range traj.Waypoints {
		markers = append(markers, axisMarkers(header, i, waypoint, lifetime)...)
		path.Points = append(path.Points, ros.PointFromVector(waypoint.Point()))
	}
	return ros.MarkerArray{Markers: append(markers, path)}
}

func axisMarkers(header ros.Header, index int, waypoint spatialmath.Pose, lifetime time.Duration) []ros.Marker {
	markers := make([]ros.Marker, 0, AxesPerWaypoint)
	for axis, def := range axes {
		orientation := quat.Mul(waypoint.Orientation(), def.rotation)
		markers = append(markers, ros.Marker{
			Header:    header,
			Namespace: AxesNamespace,
			ID:        AxisID(index, axis),
			Type:      ros.Arrow,
			Action:    ros.Add,
			Pose:      ros.PoseFromSpatial(spatialmath.NewPose(waypoint.Point(), orientation)),
			Scale:     ros.Vector3{X: axisLength, Y: axisDiameter, Z: axisDiameter},
			Color:     def.color,
			Lifetime:  lifetime,
		})
	}
	return markers
}
