// Package layout computes grid geometry for the catalog views: how many
// items fit per row and per page, how lists split into rows and pages,
// and how a horizontal row slider moves.
package layout

// Profile is the footprint of one item in a grid.
type Profile struct {
	ItemWidth  int
	ItemHeight int
	Gap        int
}

// Planner picks a profile by viewport width and sizes a grid with it.
type Planner struct {
	// Breakpoint is the widest viewport that still uses the narrow profile.
	Breakpoint int
	Narrow     Profile
	Wide       Profile
}

// Plan is the outcome of sizing a grid. Both fields are at least 1.
type Plan struct {
	ItemsPerRow  int
	ItemsPerPage int
}

// DefaultPlanner returns the planner used by the web layout, in pixels.
func DefaultPlanner() Planner {
	return Planner{
		Breakpoint: 768,
		Narrow:     Profile{ItemWidth: 120, ItemHeight: 180, Gap: 8},
		Wide:       Profile{ItemWidth: 200, ItemHeight: 300, Gap: 16},
	}
}

// Profile returns the profile in effect for viewportWidth.
func (p Planner) Profile(viewportWidth int) Profile {
	if viewportWidth <= p.Breakpoint {
		return p.Narrow
	}
	return p.Wide
}

// Plan sizes a containerWidth x containerHeight grid. The result depends
// only on its arguments.
func (p Planner) Plan(containerWidth, containerHeight, viewportWidth int) Plan {
	prof := p.Profile(viewportWidth)

	perRow := fit(containerWidth, prof.ItemWidth+prof.Gap)
	rows := fit(containerHeight, prof.ItemHeight+prof.Gap)
	return Plan{ItemsPerRow: perRow, ItemsPerPage: perRow * rows}
}

// fit returns how many footprints fit in length, never less than one.
func fit(length, footprint int) int {
	if footprint < 1 {
		footprint = 1
	}
	return max(1, length/footprint)
}
