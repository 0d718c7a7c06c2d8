// Package ros defines the JSON forms of the geometry and visualization messages a session
// publishes, laid out like their ROS counterparts so existing tooling can consume them.
package ros

import (
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/waypoints/spatialmath"
)

// Header stamps a message with a sequence number, a time and a reference frame.
type Header struct {
	Seq     uint64    `json:"seq"`
	Stamp   time.Time `json:"stamp"`
	FrameID string    `json:"frame_id"`
}

// Point is a position in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector3 is used for marker scales.
type Vector3 Point

// Quaternion is an orientation in x, y, z, w order.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Pose is a position and an orientation.
type Pose struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// PoseStamped is a pose with a header.
type PoseStamped struct {
	Header Header `json:"header"`
	Pose   Pose   `json:"pose"`
}

// PoseArray is an ordered list of poses sharing a header.
type PoseArray struct {
	Header Header `json:"header"`
	Poses  []Pose `json:"poses"`
}

// ColorRGBA components are in [0, 1].
type ColorRGBA struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
	A float32 `json:"a"`
}

// MarkerType is the shape of a Marker.
type MarkerType int

// Marker shapes.
const (
	Arrow     MarkerType = 0
	Cube      MarkerType = 1
	LineStrip MarkerType = 4
)

// MarkerAction tells a renderer what to do with a Marker.
type MarkerAction int

// Marker actions.
const (
	Add    MarkerAction = 0
	Delete MarkerAction = 2
)

// Marker is a single renderable shape. (Namespace, ID) identifies it across publishes; a marker
// not republished within Lifetime disappears.
type Marker struct {
	Header    Header        `json:"header"`
	Namespace string        `json:"ns"`
	ID        int           `json:"id"`
	Type      MarkerType    `json:"type"`
	Action    MarkerAction  `json:"action"`
	Pose      Pose          `json:"pose"`
	Scale     Vector3       `json:"scale"`
	Color     ColorRGBA     `json:"color"`
	Lifetime  time.Duration `json:"lifetime"`
	Points    []Point       `json:"points,omitempty"`
}

// MarkerArray is a set of markers published together.
type MarkerArray struct {
	Markers []Marker `json:"markers"`
}

// MenuEntry is one entry of an interactive marker's context menu. IDs start at 1.
type MenuEntry struct {
	ID       int    `json:"id"`
	ParentID int    `json:"parent_id"`
	Title    string `json:"title"`
}

// InteractionMode is how an InteractiveMarkerControl responds to the mouse.
type InteractionMode int

// Interaction modes.
const (
	None       InteractionMode = 0
	Menu       InteractionMode = 1
	MoveAxis   InteractionMode = 3
	RotateAxis InteractionMode = 5
)

// InteractiveMarkerControl is one handle of an interactive marker.
type InteractiveMarkerControl struct {
	Name            string          `json:"name"`
	Orientation     Quaternion      `json:"orientation"`
	InteractionMode InteractionMode `json:"interaction_mode"`
	AlwaysVisible   bool            `json:"always_visible"`
	Markers         []Marker        `json:"markers,omitempty"`
}

// InteractiveMarker is the registration of a draggable marker and its menu.
type InteractiveMarker struct {
	Header      Header                     `json:"header"`
	Pose        Pose                       `json:"pose"`
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Scale       float64                    `json:"scale"`
	MenuEntries []MenuEntry                `json:"menu_entries"`
	Controls    []InteractiveMarkerControl `json:"controls"`
}

// PointFromVector converts a vector to a Point.
func PointFromVector(v r3.Vector) Point {
	return Point{X: v.X, Y: v.Y, Z: v.Z}
}

// Vector returns p as an r3.Vector.
func (p Point) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// QuaternionFromQuat converts a gonum quaternion to x, y, z, w order.
func QuaternionFromQuat(q quat.Number) Quaternion {
	return Quaternion{X: q.Imag, Y: q.Jmag, Z: q.Kmag, W: q.Real}
}

// Quat returns q as a gonum quaternion.
func (q Quaternion) Quat() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

// PoseFromSpatial converts a spatialmath.Pose.
func PoseFromSpatial(p spatialmath.Pose) Pose {
	return Pose{Position: PointFromVector(p.Point()), Orientation: QuaternionFromQuat(p.Orientation())}
}

// Spatial returns p as a spatialmath.Pose with a normalized orientation.
func (p Pose) Spatial() spatialmath.Pose {
	return spatialmath.NewPose(p.Position.Vector(), p.Orientation.Quat())
}
