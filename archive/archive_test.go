package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.viam.com/test"

	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/publish"
	"go.viam.com/waypoints/ros"
)

const posesTopic = "trajectory_poses_left"

func openArchive(t *testing.T, path string, session uuid.UUID) *Archive {
	t.Helper()
	a, err := Open(path, session, []string{posesTopic}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return a
}

func poseArray(seq uint64, stamp time.Time, xs ...float64) ros.PoseArray {
	msg := ros.PoseArray{Header: ros.Header{Seq: seq, Stamp: stamp, FrameID: "/base_link"}}
	for _, x := range xs {
		msg.Poses = append(msg.Poses, ros.Pose{Position: ros.Point{X: x}, Orientation: ros.Quaternion{W: 1}})
	}
	return msg
}

func TestArchiveRecordsPoseArrays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	session := uuid.New()
	a := openArchive(t, path, session)
	ctx := context.Background()
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	test.That(t, a.Publish(ctx, posesTopic, poseArray(1, stamp, 0.1, 0.2)), test.ShouldBeNil)
	test.That(t, a.Publish(ctx, posesTopic, poseArray(2, stamp.Add(time.Second), 0.3)), test.ShouldBeNil)
	// Other topics are not archived, whatever their payload.
	test.That(t, a.Publish(ctx, "trajectory_markers_path_left", ros.MarkerArray{}), test.ShouldBeNil)

	records, err := a.List(ctx, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, records, test.ShouldHaveLength, 2)
	test.That(t, records[0].Seq, test.ShouldEqual, uint64(2))
	test.That(t, records[0].Session, test.ShouldEqual, session)
	test.That(t, records[0].Topic, test.ShouldEqual, posesTopic)
	test.That(t, records[0].Frame, test.ShouldEqual, "/base_link")
	test.That(t, records[0].Published, test.ShouldEqual, stamp.Add(time.Second))
	test.That(t, records[1].Poses, test.ShouldResemble, poseArray(1, stamp, 0.1, 0.2).Poses)

	limited, err := a.List(ctx, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, limited, test.ShouldHaveLength, 1)
	test.That(t, a.Close(), test.ShouldBeNil)

	// Records survive a reopen and new rows carry the new session.
	next := uuid.New()
	a = openArchive(t, path, next)
	defer func() {
		test.That(t, a.Close(), test.ShouldBeNil)
	}()
	test.That(t, a.Publish(ctx, posesTopic, poseArray(1, stamp, 0.5)), test.ShouldBeNil)
	records, err = a.List(ctx, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, records, test.ShouldHaveLength, 3)
	test.That(t, records[0].Session, test.ShouldEqual, next)
	test.That(t, a.Session(), test.ShouldEqual, next)
}

func TestArchiveRejectsWrongPayload(t *testing.T) {
	a := openArchive(t, filepath.Join(t.TempDir(), "archive.db"), uuid.New())
	defer a.Close()
	err := a.Publish(context.Background(), posesTopic, "not poses")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected ros.PoseArray but got string")
}

func TestArchiveTeedWithBroker(t *testing.T) {
	a := openArchive(t, filepath.Join(t.TempDir(), "archive.db"), uuid.New())
	defer a.Close()
	broker := publish.NewBroker(clock.New())
	transport := publish.Tee(broker, a)
	test.That(t, transport.Publish(context.Background(), posesTopic, poseArray(1, time.Now(), 0.1)), test.ShouldBeNil)

	records, err := a.List(context.Background(), 10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, records, test.ShouldHaveLength, 1)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(" ", uuid.New(), nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}
