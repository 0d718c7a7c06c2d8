package marker

import (
	"context"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/waypoints/arm"
	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/publish"
	"go.viam.com/waypoints/referenceframe"
	"go.viam.com/waypoints/ros"
	"go.viam.com/waypoints/spatialmath"
)

const topic = "trajectory_markers_left"

var menu = []string{"first", "second", "third"}

func newTestServer(t *testing.T) (*Server, *publish.Broker) {
	t.Helper()
	broker := publish.NewBroker(clock.NewMock())
	return NewServer(topic, broker, logging.NewTestLogger(t)), broker
}

func TestNewRegistration(t *testing.T) {
	m := New(arm.Left, referenceframe.World, menu)
	test.That(t, m.Name, test.ShouldEqual, "move_left_arm")
	test.That(t, m.Description, test.ShouldEqual, "Move the left arm")
	test.That(t, m.Header.FrameID, test.ShouldEqual, referenceframe.World)
	test.That(t, m.MenuEntries, test.ShouldHaveLength, 3)
	test.That(t, m.MenuEntries[0], test.ShouldResemble, ros.MenuEntry{ID: 1, Title: "first"})
	// One gripper control plus move and rotate for each axis.
	test.That(t, m.Controls, test.ShouldHaveLength, 7)
	test.That(t, Name(arm.Right), test.ShouldEqual, "move_right_arm")
}

func TestNoPoseBeforeInsert(t *testing.T) {
	s, broker := newTestServer(t)
	_, err := s.CurrentPose()
	test.That(t, errors.Is(err, ErrNoPose), test.ShouldBeTrue)
	err = s.SetPose(context.Background(), referenceframe.NewPoseInFrame(referenceframe.World, spatialmath.NewZeroPose()))
	test.That(t, errors.Is(err, ErrNoPose), test.ShouldBeTrue)
	test.That(t, s.ApplyChanges(context.Background()), test.ShouldBeNil)
	test.That(t, broker.Topics(), test.ShouldBeEmpty)
}

func TestApplyChangesPublishesOnce(t *testing.T) {
	s, broker := newTestServer(t)
	sub, cancel := broker.Subscribe(topic, 4)
	defer cancel()

	s.Insert(New(arm.Left, referenceframe.World, menu), nil)
	test.That(t, s.ApplyChanges(context.Background()), test.ShouldBeNil)
	test.That(t, s.ApplyChanges(context.Background()), test.ShouldBeNil)
	test.That(t, len(sub), test.ShouldEqual, 1)

	target := referenceframe.NewPoseInFrame("/torso_lift_link", spatialmath.NewPoseFromPoint(r3.Vector{X: 0.6, Z: 0.2}))
	test.That(t, s.SetPose(context.Background(), target), test.ShouldBeNil)
	test.That(t, len(sub), test.ShouldEqual, 2)

	latest, ok := broker.Latest(topic)
	test.That(t, ok, test.ShouldBeTrue)
	registration := latest.Payload.(ros.InteractiveMarker)
	test.That(t, registration.Header.FrameID, test.ShouldEqual, "/torso_lift_link")
	test.That(t, registration.Pose.Position, test.ShouldResemble, ros.Point{X: 0.6, Z: 0.2})

	current, err := s.CurrentPose()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, current, test.ShouldEqual, target)
}

func TestProcessFeedback(t *testing.T) {
	s, _ := newTestServer(t)
	var received []Feedback
	s.Insert(New(arm.Left, referenceframe.World, menu), func(ctx context.Context, feedback Feedback) error {
		received = append(received, feedback)
		if feedback.Type == MenuSelect && feedback.MenuEntryID == 3 {
			return errors.New("handler failed")
		}
		return nil
	})
	ctx := context.Background()
	dragged := referenceframe.NewPoseInFrame(referenceframe.World, spatialmath.NewPoseFromPoint(r3.Vector{Y: 0.3}))

	test.That(t, s.ProcessFeedback(ctx, Feedback{MarkerName: "move_left_arm", Type: PoseUpdate, Pose: dragged}), test.ShouldBeNil)
	current, err := s.CurrentPose()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, current, test.ShouldEqual, dragged)

	test.That(t, s.ProcessFeedback(ctx, Feedback{MarkerName: "move_left_arm", Type: MenuSelect, MenuEntryID: 1}), test.ShouldBeNil)
	err = s.ProcessFeedback(ctx, Feedback{MarkerName: "move_left_arm", Type: MenuSelect, MenuEntryID: 3})
	test.That(t, err, test.ShouldBeError, errors.New("handler failed"))
	test.That(t, received, test.ShouldHaveLength, 3)

	err = s.ProcessFeedback(ctx, Feedback{MarkerName: "move_left_arm", Type: MenuSelect, MenuEntryID: 4})
	test.That(t, errors.Is(err, ErrUnknownMenuEntry), test.ShouldBeTrue)
	err = s.ProcessFeedback(ctx, Feedback{MarkerName: "move_right_arm", Type: MenuSelect, MenuEntryID: 1})
	test.That(t, errors.Is(err, ErrUnknownMarker), test.ShouldBeTrue)
	err = s.ProcessFeedback(ctx, Feedback{MarkerName: "move_left_arm", Type: PoseUpdate})
	test.That(t, err, test.ShouldNotBeNil)
	err = s.ProcessFeedback(ctx, Feedback{MarkerName: "move_left_arm", Type: FeedbackType(7)})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, received, test.ShouldHaveLength, 3)
}
