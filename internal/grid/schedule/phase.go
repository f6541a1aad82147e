package schedule

import "strings"

// Phase is one bit of pending grid work.
type Phase uint8

const (
	// PhaseSort recomputes the sort permutations.
	PhaseSort Phase = 1 << iota

	// PhaseColumns rebuilds column metadata and header cells.
	PhaseColumns

	// PhaseRows re-renders cell content in place.
	PhaseRows

	// PhaseBuildRows rebuilds the flattened view from scratch.
	PhaseBuildRows

	// PhaseResize recomputes widths and heights. It subsumes the two
	// finer-grained variants below.
	PhaseResize

	// PhaseResizeHeight recomputes the spring row height only.
	PhaseResizeHeight

	// PhaseResizeWidth recomputes the spring column widths only.
	PhaseResizeWidth
)

// PhaseAll is every phase.
const PhaseAll = PhaseSort | PhaseColumns | PhaseRows | PhaseBuildRows |
	PhaseResize | PhaseResizeHeight | PhaseResizeWidth

// Order is the fixed execution order of a flush. The resize variants only
// run when PhaseResize itself is not pending.
var Order = []Phase{
	PhaseSort,
	PhaseColumns,
	PhaseRows,
	PhaseBuildRows,
	PhaseResize,
	PhaseResizeHeight,
	PhaseResizeWidth,
}

var phaseNames = map[Phase]string{
	PhaseSort:         "sort",
	PhaseColumns:      "columns",
	PhaseRows:         "rows",
	PhaseBuildRows:    "buildRows",
	PhaseResize:       "resize",
	PhaseResizeHeight: "resizeHeight",
	PhaseResizeWidth:  "resizeWidth",
}

// Has reports whether p contains every bit of q.
func (p Phase) Has(q Phase) bool {
	return q != 0 && p&q == q
}

// String lists the set bits, e.g. "sort|buildRows".
func (p Phase) String() string {
	if p == 0 {
		return "none"
	}
	var parts []string
	for _, q := range Order {
		if p&q != 0 {
			parts = append(parts, phaseNames[q])
		}
	}
	return strings.Join(parts, "|")
}
