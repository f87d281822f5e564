package hybridastar

import (
	"fmt"

	"github.com/pkg/errors"

	"go.parkplan.dev/planner/motionplan/occupancy"
)

var (
	// ErrOutOfBounds is returned when the start or goal lies outside the map extents.
	ErrOutOfBounds = occupancy.ErrOutOfBounds

	// ErrEndpointInCollision is returned when the start or goal pose is on an occupied cell.
	ErrEndpointInCollision = errors.New("endpoint is in collision")

	// ErrSearchExhausted is returned when every reachable cell was expanded without reaching the goal.
	ErrSearchExhausted = errors.New("search exhausted without reaching the goal")

	// ErrNotReady is returned when Search or SetObstacle is called before Init.
	ErrNotReady = errors.New("planner has no map; call Init first")

	// ErrPlannerBusy is returned when Search is entered while another search is running on the same planner.
	ErrPlannerBusy = errors.New("planner is already searching")
)

// ConfigurationError reports an invalid planner parameter.
type ConfigurationError struct {
	Field  string
	Reason string
}

// NewConfigurationError returns a ConfigurationError for the named field.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid planner configuration %q: %s", e.Field, e.Reason)
}

// IsPlanningFailure reports whether err is an expected outcome of a single query, one the caller may
// recover from by trying another start, goal or map, as opposed to a misconfigured planner.
func IsPlanningFailure(err error) bool {
	return errors.Is(err, ErrOutOfBounds) ||
		errors.Is(err, ErrEndpointInCollision) ||
		errors.Is(err, ErrSearchExhausted)
}
