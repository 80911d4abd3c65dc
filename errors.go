package citygen

import (
	"errors"

	"github.com/mossport/citygen/internal/cell"
	"github.com/mossport/citygen/internal/mesh"
	"github.com/mossport/citygen/internal/topology"
)

// The four retryable failure kinds the orchestrator's build loop
// recognizes. Any other error from a stage is fatal immediately: it
// indicates a programming error, not a bad random draw.
var (
	// ErrBadWalledArea is returned when the chosen walled patch set does
	// not yield a single closed circumference, or when no gate can be
	// placed on it.
	ErrBadWalledArea = cell.ErrBadWalledArea

	// ErrUnableToBuildStreet is returned when a required street or road
	// has no route once blocked vertices are excluded. An artery with no
	// route is skipped rather than reported.
	ErrUnableToBuildStreet = topology.ErrUnableToBuildStreet

	// ErrBadCitadelShape is returned when the patch chosen as the citadel
	// collapses to a degenerate or non-convex shape.
	ErrBadCitadelShape = errors.New("citygen: citadel patch has a degenerate shape")

	// ErrDegeneratePatch is returned when junction optimization collapses
	// a patch to fewer than three vertices.
	ErrDegeneratePatch = mesh.ErrDegeneratePatch
)

// retryable reports whether err is one of the four kinds above, and so
// should trigger a reseed-and-retry rather than aborting generation.
func retryable(err error) bool {
	return errors.Is(err, ErrBadWalledArea) ||
		errors.Is(err, ErrUnableToBuildStreet) ||
		errors.Is(err, ErrBadCitadelShape) ||
		errors.Is(err, ErrDegeneratePatch)
}
