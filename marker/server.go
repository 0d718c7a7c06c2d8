// Package marker implements the single draggable 6-DOF marker and its context menu.
//
// The marker is both the operator's input device and a display: its pose is changed by the
// operator dragging it (feedback) and by the session repositioning it.
package marker

import (
	"context"
	"math"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/waypoints/arm"
	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/publish"
	"go.viam.com/waypoints/referenceframe"
	"go.viam.com/waypoints/ros"
	"go.viam.com/waypoints/spatialmath"
)

var (
	// ErrNoPose is returned when the marker has not been given a pose yet.
	ErrNoPose = errors.New("marker has no pose")
	// ErrUnknownMarker is returned for feedback addressed to a marker this server does not hold.
	ErrUnknownMarker = errors.New("unknown marker")
	// ErrUnknownMenuEntry is returned for a menu selection with no matching entry.
	ErrUnknownMenuEntry = errors.New("unknown menu entry")
)

// Interactive is the marker capability a session depends on.
type Interactive interface {
	CurrentPose() (*referenceframe.PoseInFrame, error)
	SetPose(ctx context.Context, pose *referenceframe.PoseInFrame) error
}

// FeedbackType distinguishes drags from menu selections.
type FeedbackType int

const (
	// PoseUpdate is sent while the operator drags the marker.
	PoseUpdate FeedbackType = iota
	// MenuSelect is sent when the operator picks a menu entry.
	MenuSelect
)

// Feedback is an operator interaction with the marker.
type Feedback struct {
	MarkerName  string
	Type        FeedbackType
	Pose        *referenceframe.PoseInFrame
	MenuEntryID int
}

// FeedbackHandler receives feedback after the server has applied any pose change.
type FeedbackHandler func(ctx context.Context, feedback Feedback) error

// Name returns the marker name used for side.
func Name(side arm.Side) string {
	return "move_" + side.String() + "_arm"
}

// New builds the registration of side's marker in frame with the given menu entry titles.
// The marker starts at the frame origin.
func New(side arm.Side, frame string, menu []string) ros.InteractiveMarker {
	entries := make([]ros.MenuEntry, 0, len(menu))
	for i, title := range menu {
		entries = append(entries, ros.MenuEntry{ID: i + 1, Title: title})
	}
	return ros.InteractiveMarker{
		Header:      ros.Header{FrameID: frame},
		Pose:        ros.PoseFromSpatial(spatialmath.NewZeroPose()),
		Name:        Name(side),
		Description: "Move the " + side.String() + " arm",
		Scale:       0.3,
		MenuEntries: entries,
		Controls:    append([]ros.InteractiveMarkerControl{gripperControl()}, sixDOFControls()...),
	}
}

func gripperControl() ros.InteractiveMarkerControl {
	return ros.InteractiveMarkerControl{
		Name:            "gripper",
		Orientation:     ros.QuaternionFromQuat(spatialmath.NewZeroOrientation()),
		InteractionMode: ros.Menu,
		AlwaysVisible:   true,
		Markers: []ros.Marker{{
			Type:  ros.Cube,
			Pose:  ros.PoseFromSpatial(spatialmath.NewPoseFromPoint(r3.Vector{X: 0.1})),
			Scale: ros.Vector3{X: 0.2, Y: 0.08, Z: 0.05},
			Color: ros.ColorRGBA{R: 0.5, G: 0.5, B: 0.5, A: 1},
		}},
	}
}

// sixDOFControls moves and rotates along each of x, y and z.
func sixDOFControls() []ros.InteractiveMarkerControl {
	axes := []struct {
		name        string
		orientation quat.Number
	}{
		{"x", spatialmath.NewZeroOrientation()},
		{"y", spatialmath.AxisAngleToQuat(r3.Vector{Z: 1}, math.Pi/2)},
		{"z", spatialmath.AxisAngleToQuat(r3.Vector{Y: 1}, -math.Pi/2)},
	}
	controls := make([]ros.InteractiveMarkerControl, 0, 2*len(axes))
	for _, axis := range axes {
		orientation := ros.QuaternionFromQuat(axis.orientation)
		controls = append(controls,
			ros.InteractiveMarkerControl{Name: "rotate_" + axis.name, Orientation: orientation, InteractionMode: ros.RotateAxis},
			ros.InteractiveMarkerControl{Name: "move_" + axis.name, Orientation: orientation, InteractionMode: ros.MoveAxis},
		)
	}
	return controls
}

// Server holds one interactive marker, applies operator feedback to it and publishes its
// registration on a topic.
type Server struct {
	topic     string
	transport publish.Transport
	logger    logging.Logger

	mu      sync.Mutex
	marker  *ros.InteractiveMarker
	pose    *referenceframe.PoseInFrame
	handler FeedbackHandler
	changed bool
}

var _ Interactive = (*Server)(nil)

// NewServer returns a server publishing registrations on topic.
func NewServer(topic string, transport publish.Transport, logger logging.Logger) *Server {
	return &Server{topic: topic, transport: transport, logger: logger}
}

// Insert registers m, replacing any previous marker. Changes are only published by ApplyChanges.
func (s *Server) Insert(m ros.InteractiveMarker, handler FeedbackHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = &m
	s.pose = referenceframe.NewPoseInFrame(m.Header.FrameID, m.Pose.Spatial())
	s.handler = handler
	s.changed = true
}

// ApplyChanges publishes the current registration if anything changed since the last call.
func (s *Server) ApplyChanges(ctx context.Context) error {
	s.mu.Lock()
	if s.marker == nil || !s.changed {
		s.mu.Unlock()
		return nil
	}
	registration := s.registrationLocked()
	s.changed = false
	s.mu.Unlock()

	if err := s.transport.Publish(ctx, s.topic, registration); err != nil {
		s.mu.Lock()
		s.changed = true
		s.mu.Unlock()
		return errors.Wrapf(err, "publishing %s", s.topic)
	}
	s.logger.Debugw("marker registration applied", "topic", s.topic, "pose", registration.Pose)
	return nil
}

func (s *Server) registrationLocked() ros.InteractiveMarker {
	registration := *s.marker
	registration.Header.FrameID = s.pose.FrameName()
	registration.Pose = ros.PoseFromSpatial(s.pose.Pose())
	return registration
}

// Marker returns the current registration.
func (s *Server) Marker() (ros.InteractiveMarker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.marker == nil {
		return ros.InteractiveMarker{}, ErrNoPose
	}
	return s.registrationLocked(), nil
}

// CurrentPose returns where the marker is.
func (s *Server) CurrentPose() (*referenceframe.PoseInFrame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pose == nil {
		return nil, ErrNoPose
	}
	return s.pose, nil
}

// SetPose moves the marker and republishes its registration.
func (s *Server) SetPose(ctx context.Context, pose *referenceframe.PoseInFrame) error {
	s.mu.Lock()
	if s.marker == nil {
		s.mu.Unlock()
		return ErrNoPose
	}
	s.pose = pose
	s.changed = true
	s.mu.Unlock()
	return s.ApplyChanges(ctx)
}

// ProcessFeedback applies feedback from the marker transport and hands it to the registered
// handler. A drag updates the marker pose before the handler runs.
func (s *Server) ProcessFeedback(ctx context.Context, feedback Feedback) error {
	s.mu.Lock()
	if s.marker == nil || feedback.MarkerName != s.marker.Name {
		s.mu.Unlock()
		return errors.Wrapf(ErrUnknownMarker, "%q", feedback.MarkerName)
	}
	switch feedback.Type {
	case PoseUpdate:
		if feedback.Pose == nil {
			s.mu.Unlock()
			return errors.New("pose update without a pose")
		}
		s.pose = feedback.Pose
	case MenuSelect:
		if feedback.MenuEntryID < 1 || feedback.MenuEntryID > len(s.marker.MenuEntries) {
			s.mu.Unlock()
			return errors.Wrapf(ErrUnknownMenuEntry, "id %d", feedback.MenuEntryID)
		}
	default:
		s.mu.Unlock()
		return errors.Errorf("unknown feedback type %d", int(feedback.Type))
	}
	handler := s.handler
	s.mu.Unlock()

	if handler == nil {
		return nil
	}
	return handler(ctx, feedback)
}
