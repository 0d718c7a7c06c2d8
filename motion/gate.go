package motion

import (
	"context"

	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/referenceframe"
)

// FeasibilityGate decides whether a candidate waypoint is reachable by the routed arm.
type FeasibilityGate struct {
	route  *Route
	logger logging.Logger
}

// NewFeasibilityGate returns a gate using route's IK entry point.
func NewFeasibilityGate(route *Route, logger logging.Logger) *FeasibilityGate {
	return &FeasibilityGate{route: route, logger: logger}
}

// Check reports whether pose is reachable. An oracle error is returned alongside a false result;
// callers must treat both as a rejection.
func (g *FeasibilityGate) Check(ctx context.Context, pose *referenceframe.PoseInFrame) (bool, error) {
	ok, err := g.route.CheckIK(ctx, pose)
	if err != nil {
		return false, err
	}
	g.logger.Debugw("checked reachability", "side", g.route.Side, "pose", pose, "reachable", ok)
	return ok, nil
}
