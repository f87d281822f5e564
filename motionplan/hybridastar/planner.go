// Package hybridastar plans drivable paths for car-like vehicles with Hybrid A*: a search over a
// discretised (x, y, heading) grid whose edges are continuous constant-curvature motions, closed to the
// goal by an analytic Reeds-Shepp or Dubins curve once the search gets near.
package hybridastar

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"go.parkplan.dev/planner/logging"
	"go.parkplan.dev/planner/motionplan/curves"
	"go.parkplan.dev/planner/motionplan/occupancy"
	"go.parkplan.dev/planner/spatialmath"
)

// State is the lifecycle stage of a Planner.
type State int32

// Planner states. A planner starts in StateInit, becomes StateReady once Init loads a map, and moves
// through StateSearching to StateSucceeded or StateFailed on every Search.
const (
	StateInit State = iota
	StateReady
	StateSearching
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateReady:
		return "ready"
	case StateSearching:
		return "searching"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Planner is the entry point for path planning. Load a map with Init and SetObstacle, then call Search
// once per start and goal pair.
//
// A Planner is not safe for concurrent use. Callers must serialize Init, SetObstacle and Search; a
// Search entered while another is running fails fast with ErrPlannerBusy rather than blocking.
type Planner struct {
	opts   Options
	logger logging.Logger
	family curves.Family
	prims  *primitiveSet

	state    atomic.Int32
	grid     *occupancy.Grid
	searcher *searcher
}

// NewPlanner validates opts and returns a planner waiting for a map.
func NewPlanner(opts Options, logger logging.Logger) (*Planner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	family, err := curves.NewFamily(opts.AnalyticCurve, opts.TurningRadius())
	if err != nil {
		return nil, NewConfigurationError("analytic_curve", err.Error())
	}
	logger = logger.Sublogger("hybridastar")
	logger.Debugw("planner created",
		"curve", family.Name(),
		"turning_radius", opts.TurningRadius(),
		"primitives", 2*(2*opts.SteeringAngleDiscreteNum+1),
		"heading_bins", opts.HeadingBins,
	)
	return &Planner{
		opts:   opts,
		logger: logger,
		family: family,
		prims:  newPrimitiveSet(opts),
	}, nil
}

// Options returns the options the planner was built with.
func (p *Planner) Options() Options {
	return p.opts
}

// State returns the current lifecycle stage.
func (p *Planner) State() State {
	return State(p.state.Load())
}

// Grid returns the obstacle grid, or nil before Init.
func (p *Planner) Grid() *occupancy.Grid {
	return p.grid
}

// Init replaces the map with an empty one covering bounds. The search discretises positions at
// stateResolution and the obstacle grid uses mapResolution.
func (p *Planner) Init(bounds occupancy.Bounds, stateResolution, mapResolution float64) error {
	if p.State() == StateSearching {
		return ErrPlannerBusy
	}
	if !(stateResolution > 0) || math.IsInf(stateResolution, 0) {
		return NewConfigurationError("state_grid_resolution", "must be positive and finite")
	}
	if err := bounds.Validate(); err != nil {
		return NewConfigurationError("bounds", err.Error())
	}
	grid, err := occupancy.NewGrid(bounds, mapResolution)
	if err != nil {
		return NewConfigurationError("map_grid_resolution", err.Error())
	}
	p.grid = grid
	p.searcher = newSearcher(p.opts, p.logger, grid, stateResolution, p.family, p.prims)
	p.state.Store(int32(StateReady))
	p.logger.Debugw("map initialised",
		"bounds", bounds,
		"state_resolution", stateResolution,
		"map_resolution", mapResolution,
		"map_cells", grid.Width()*grid.Height(),
	)
	return nil
}

// SetObstacle marks obstacle grid cell (ix, iy) occupied. Repeated calls have no further effect.
func (p *Planner) SetObstacle(ix, iy int) error {
	switch p.State() {
	case StateInit:
		return ErrNotReady
	case StateSearching:
		return ErrPlannerBusy
	}
	if err := p.grid.SetObstacle(ix, iy); err != nil {
		return err
	}
	p.searcher.invalidate()
	return nil
}

// Search plans from start to goal over the loaded map. Failures that depend only on the query (see
// IsPlanningFailure) leave the planner ready for the next call.
func (p *Planner) Search(ctx context.Context, start, goal spatialmath.Pose) (*Plan, error) {
	if err := p.enterSearch(); err != nil {
		return nil, err
	}
	plan, err := p.searcher.Search(ctx, start, goal)
	if err != nil {
		p.state.Store(int32(StateFailed))
		return nil, errors.Wrapf(err, "planning from %v to %v", start, goal)
	}
	p.state.Store(int32(StateSucceeded))
	return plan, nil
}

// enterSearch moves the planner into StateSearching.
func (p *Planner) enterSearch() error {
	for {
		current := p.state.Load()
		switch State(current) {
		case StateInit:
			return ErrNotReady
		case StateSearching:
			return ErrPlannerBusy
		}
		if p.state.CompareAndSwap(current, int32(StateSearching)) {
			return nil
		}
	}
}
