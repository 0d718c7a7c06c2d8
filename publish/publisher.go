package publish

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/ros"
	"go.viam.com/waypoints/spatialmath"
	"go.viam.com/waypoints/trajectory"
	"go.viam.com/waypoints/visualization"
)

// Publisher stamps and sends one arm's visualization and trajectory. It keeps no state beyond
// sequence counters: every visualization publish is a full rebuild from the given snapshot.
type Publisher struct {
	transport Transport
	topics    Topics
	clock     clock.Clock
	lifetime  time.Duration
	logger    logging.Logger

	visualizationSeq uint64
	posesSeq         uint64
}

// NewPublisher returns a publisher whose visualization markers live for lifetime, which should
// be the tick period.
func NewPublisher(
	transport Transport,
	topics Topics,
	clk clock.Clock,
	lifetime time.Duration,
	logger logging.Logger,
) *Publisher {
	return &Publisher{transport: transport, topics: topics, clock: clk, lifetime: lifetime, logger: logger}
}

// Topics returns the topics this publisher writes to.
func (p *Publisher) Topics() Topics {
	return p.topics
}

// PublishVisualization renders traj and publishes the marker set.
func (p *Publisher) PublishVisualization(ctx context.Context, traj trajectory.Trajectory) error {
	frame := visualization.Render(traj, p.lifetime)
	p.visualizationSeq++
	stamp := p.clock.Now()
	for i := range frame.Markers {
		frame.Markers[i].Header.Seq = p.visualizationSeq
		frame.Markers[i].Header.Stamp = stamp
	}
	if err := p.transport.Publish(ctx, p.topics.Visualization, frame); err != nil {
		return errors.Wrapf(err, "publishing %s", p.topics.Visualization)
	}
	return nil
}

// PublishTrajectory publishes traj as a pose array.
func (p *Publisher) PublishTrajectory(ctx context.Context, traj trajectory.Trajectory) error {
	p.posesSeq++
	msg := PoseArray(traj)
	msg.Header.Seq = p.posesSeq
	msg.Header.Stamp = p.clock.Now()
	if err := p.transport.Publish(ctx, p.topics.Poses, msg); err != nil {
		return errors.Wrapf(err, "publishing %s", p.topics.Poses)
	}
	p.logger.Infow("trajectory published", "topic", p.topics.Poses, "waypoints", len(msg.Poses))
	return nil
}

// PoseArray encodes traj's waypoints in order, in the trajectory's frame. The header carries no
// sequence number or stamp.
func PoseArray(traj trajectory.Trajectory) ros.PoseArray {
	return ros.PoseArray{
		Header: ros.Header{FrameID: traj.Frame},
		Poses: lo.Map(traj.Waypoints, func(waypoint spatialmath.Pose, _ int) ros.Pose {
			return ros.PoseFromSpatial(waypoint)
		}),
	}
}
