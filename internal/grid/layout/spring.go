// Package layout computes column widths, the spring row height and the
// scroll viewport shared by the grid header and body.
package layout

// Track is one visible column as seen by width distribution.
type Track struct {
	// Width is the nominal width in cells.
	Width int

	// Spring marks the track as absorbing leftover width.
	Spring bool
}

// Widths is the result of distributing the available width.
type Widths struct {
	// Columns holds the final width of each track, in track order.
	Columns []int

	// Filler is the width of the trailing filler. It is only non-zero when no
	// track springs and the content is narrower than the container.
	Filler int

	// Overflow is set when the content is wider than the container and a
	// horizontal scroll is needed.
	Overflow bool

	// Total is the sum of Columns.
	Total int
}

// Offset returns the x offset of track i from the left edge of the content.
func (w Widths) Offset(i int) int {
	x := 0
	for j := 0; j < i && j < len(w.Columns); j++ {
		x += w.Columns[j]
	}
	return x
}

// TrackAt returns the track under content x, or -1.
func (w Widths) TrackAt(x int) int {
	if x < 0 {
		return -1
	}
	for i, cw := range w.Columns {
		if x < cw {
			return i
		}
		x -= cw
	}
	return -1
}

// Distribute assigns final widths to tracks inside available cells.
//
// Non-spring tracks keep their width. The remaining slack goes to the spring
// tracks: when it is smaller than their nominal sum the content overflows and
// springs stay nominal; otherwise it is split evenly with the integer
// remainder added to the last spring, so spring widths sum to the slack.
func Distribute(tracks []Track, available int) Widths {
	w := Widths{Columns: make([]int, len(tracks))}

	fixed, nominal, springs, last := 0, 0, 0, -1
	for i, t := range tracks {
		width := max(0, t.Width)
		w.Columns[i] = width
		if t.Spring {
			nominal += width
			springs++
			last = i
		} else {
			fixed += width
		}
	}

	if springs == 0 {
		w.Total = fixed
		w.Overflow = fixed > available
		w.Filler = max(0, available-fixed)
		return w
	}

	slack := available - fixed
	if slack < nominal {
		w.Overflow = true
		w.Total = fixed + nominal
		return w
	}

	share, rem := slack/springs, slack%springs
	for i, t := range tracks {
		if t.Spring {
			w.Columns[i] = share
		}
	}
	w.Columns[last] += rem
	w.Total = fixed + slack
	return w
}

// SpringRowHeight returns the height of the filler row that stretches the
// body to the container, or 0 when the data is at least as tall.
func SpringRowHeight(container, header, footer, data int) int {
	return max(0, container-header-footer-data)
}
