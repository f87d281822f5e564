package hybridastar

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"go.parkplan.dev/planner/logging"
	"go.parkplan.dev/planner/motionplan/curves"
	"go.parkplan.dev/planner/motionplan/occupancy"
	"go.parkplan.dev/planner/spatialmath"
)

// ctxCheckInterval is how many pops pass between checks for cancellation and the expansion limit.
const ctxCheckInterval = 64

// endpointTolerance is how close start and goal must be to be treated as the same pose.
const endpointTolerance = 1e-9

// searchStats are counters for one search.
type searchStats struct {
	pops     int
	expanded int
	pushed   int
	stale    int
	pruned   int
}

// searcher runs Hybrid A* over one obstacle grid. It is rebuilt whenever the grid is replaced and
// reset at the start of every search.
type searcher struct {
	opts    Options
	logger  logging.Logger
	grid    *occupancy.Grid
	disc    *discretizer
	prims   *primitiveSet
	checker *collisionChecker
	shot    *shotGenerator
	family  curves.Family

	arena  nodeArena
	open   openSet
	best   map[Cell]float64
	closed map[Cell]bool
	stats  searchStats

	// distance field for the most recent goal cell, dropped when the grid changes.
	field     *occupancy.DistanceField
	fieldCell [2]int
}

func newSearcher(
	opts Options,
	logger logging.Logger,
	grid *occupancy.Grid,
	stateResolution float64,
	family curves.Family,
	prims *primitiveSet,
) *searcher {
	checker := newCollisionChecker(grid, opts.Footprint)
	return &searcher{
		opts:    opts,
		logger:  logger,
		grid:    grid,
		disc:    newDiscretizer(grid.Bounds(), stateResolution, opts.HeadingBins),
		prims:   prims,
		checker: checker,
		shot:    newShotGenerator(family, opts, checker),
		family:  family,
		best:    map[Cell]float64{},
		closed:  map[Cell]bool{},
	}
}

func (s *searcher) reset() {
	s.arena.reset()
	s.open.reset()
	clear(s.best)
	clear(s.closed)
	s.stats = searchStats{}
	s.checker.checks = 0
	s.shot.attempts = 0
}

// invalidate drops state derived from the obstacle grid.
func (s *searcher) invalidate() {
	s.field = nil
}

// distanceField returns the holonomic distance field towards goal, reusing the previous one when the
// goal falls in the same map cell.
func (s *searcher) distanceField(goal spatialmath.Pose) *occupancy.DistanceField {
	ix, iy, _ := s.grid.Index(goal.Point)
	key := [2]int{ix, iy}
	if s.field == nil || s.fieldCell != key {
		s.field = s.grid.DistanceField(goal.Point)
		s.fieldCell = key
	}
	return s.field
}

// validateEndpoint rejects poses the search cannot start or end at.
func (s *searcher) validateEndpoint(name string, pose spatialmath.Pose) error {
	if !s.grid.Bounds().Contains(pose.Point) {
		return errors.Wrapf(ErrOutOfBounds, "%s %v outside %v", name, pose, s.grid.Bounds())
	}
	if !s.checker.IsFree([]spatialmath.Pose{pose}) {
		return errors.Wrapf(ErrEndpointInCollision, "%s %v", name, pose)
	}
	return nil
}

// Search finds a drivable, collision free path from start to goal.
func (s *searcher) Search(ctx context.Context, start, goal spatialmath.Pose) (*Plan, error) {
	ctx, span := trace.StartSpan(ctx, "hybridastar::Search")
	defer span.End()

	begin := time.Now()
	s.reset()
	plan, err := s.search(ctx, start, goal)
	span.AddAttributes(
		trace.Int64Attribute("expanded", int64(s.stats.expanded)),
		trace.Int64Attribute("pushed", int64(s.stats.pushed)),
		trace.Int64Attribute("shots", int64(s.shot.attempts)),
	)
	s.logger.Debugw("search finished",
		"start", start.String(),
		"goal", goal.String(),
		"success", err == nil,
		"pops", s.stats.pops,
		"expanded", s.stats.expanded,
		"pushed", s.stats.pushed,
		"stale", s.stats.stale,
		"pruned", s.stats.pruned,
		"shots", s.shot.attempts,
		"collision_checks", s.checker.checks,
		"duration", time.Since(begin),
	)
	return plan, err
}

func (s *searcher) search(ctx context.Context, start, goal spatialmath.Pose) (*Plan, error) {
	if err := s.validateEndpoint("start", start); err != nil {
		return nil, err
	}
	if err := s.validateEndpoint("goal", goal); err != nil {
		return nil, err
	}
	if start.AlmostEqual(goal, endpointTolerance, endpointTolerance) {
		return &Plan{Waypoints: []spatialmath.Pose{start}}, nil
	}

	h := &heuristic{goal: goal, field: s.distanceField(goal), family: s.family}
	hStart, reachable := h.Estimate(start)
	if !reachable {
		return nil, errors.Wrap(ErrSearchExhausted, "goal is not reachable from start through free space")
	}
	startCell := s.disc.ToCell(start)
	startIdx := s.arena.add(node{cell: startCell, pose: start, h: hStart, parent: noParent})
	s.best[startCell] = 0
	s.open.Push(startIdx, s.arena.get(startIdx))
	s.stats.pushed++

	for {
		if s.stats.pops%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "search interrupted")
			}
			if s.opts.MaxExpansions > 0 && s.stats.expanded >= s.opts.MaxExpansions {
				return nil, errors.Wrapf(ErrSearchExhausted, "expansion limit of %d reached", s.opts.MaxExpansions)
			}
		}
		entry, ok := s.open.Pop()
		if !ok {
			return nil, errors.Wrapf(ErrSearchExhausted, "after expanding %d cells", s.stats.expanded)
		}
		s.stats.pops++

		// copy: the arena may grow while this node's children are added.
		cur := *s.arena.get(entry.node)
		if s.closed[cur.cell] || cur.g > s.best[cur.cell] {
			s.stats.stale++
			continue
		}
		s.closed[cur.cell] = true
		s.stats.expanded++

		if s.shot.InRange(cur.pose, goal) {
			if curve, samples, ok := s.shot.Try(cur.pose, goal); ok {
				return s.reconstruct(entry.node, curve, samples), nil
			}
		}
		s.expand(entry.node, &cur, h)
	}
}

// expand pushes every collision free successor of the node at idx whose cell is open and improved.
func (s *searcher) expand(idx int, cur *node, h *heuristic) {
	for _, prim := range s.prims.primitives {
		samples := s.prims.Sample(cur.pose, prim)
		if !s.checker.IsFree(samples) {
			continue
		}
		end := samples[len(samples)-1]
		cell := s.disc.ToCell(end)
		if s.closed[cell] {
			continue
		}
		g := cur.g + s.prims.StepCost(prim, cur.prim.SteerIndex)
		if prev, seen := s.best[cell]; seen && g >= prev {
			continue
		}
		estimate, reachable := h.Estimate(end)
		if !reachable {
			s.stats.pruned++
			continue
		}
		changes := cur.changes
		if cur.prim.Direction != 0 && cur.prim.Direction != prim.Direction {
			changes++
		}
		child := s.arena.add(node{
			cell:    cell,
			pose:    end,
			g:       g,
			h:       estimate,
			parent:  idx,
			prim:    prim,
			samples: samples,
			changes: changes,
		})
		s.best[cell] = g
		s.open.Push(child, s.arena.get(child))
		s.stats.pushed++
	}
}

// reconstruct walks parents back from the node at idx and appends the analytic shot to the goal.
func (s *searcher) reconstruct(idx int, curve *curves.Path, shotSamples []spatialmath.Pose) *Plan {
	branch := s.arena.branch(idx)
	plan := &Plan{
		Waypoints: make([]spatialmath.Pose, 0, len(branch)+1),
		Segments:  make([]Segment, 0, len(branch)),
		Expanded:  s.stats.expanded,
	}
	for _, i := range branch {
		n := s.arena.get(i)
		plan.Waypoints = append(plan.Waypoints, n.pose)
		if n.parent == noParent {
			continue
		}
		plan.Segments = append(plan.Segments, Segment{
			Kind:      SegmentPrimitive,
			Primitive: n.prim,
			Poses:     n.samples,
		})
	}
	plan.Waypoints = append(plan.Waypoints, shotSamples[len(shotSamples)-1])
	plan.Segments = append(plan.Segments, Segment{Kind: SegmentShot, Curve: curve, Poses: shotSamples})
	plan.Cost = s.arena.get(idx).g + s.shot.Cost(curve)
	return plan
}
