package drag

import "github.com/maastricht-university/audiosort/scoring"

type Point struct{ X, Y int }

// Rect bounds are exclusive: a point on the border is outside.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Contains(p Point) bool {
	return r.X < p.X && p.X < r.X+r.W && r.Y < p.Y && p.Y < r.Y+r.H
}

func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Area is a bucket region on screen.
type Area struct {
	Label string
	Rect
}

// State is either Idle or Dragging.
type State interface{ state() }

type Idle struct{}

// Dragging always carries the sample being moved.
type Dragging struct {
	Sample string
	At     Point
}

func (Idle) state()     {}
func (Dragging) state() {}

// Drop is the outcome of a release.
type Drop struct {
	Sample string
	Bucket string
	Inside bool
}

// Machine tracks the single in-flight drag.
type Machine struct {
	st State
}

func NewMachine() *Machine { return &Machine{st: Idle{}} }

func (m *Machine) State() State { return m.st }

func (m *Machine) Active() bool {
	_, ok := m.st.(Dragging)
	return ok
}

// Press starts dragging sample. It is refused while another drag is active.
func (m *Machine) Press(sample string, at Point) bool {
	if sample == "" || m.Active() {
		return false
	}
	m.st = Dragging{Sample: sample, At: at}
	return true
}

func (m *Machine) Move(at Point) {
	if d, ok := m.st.(Dragging); ok {
		d.At = at
		m.st = d
	}
}

// Release ends the drag and resolves the drop target against areas.
// ok is false when nothing was being dragged.
func (m *Machine) Release(at Point, areas []Area) (Drop, bool) {
	d, ok := m.st.(Dragging)
	if !ok {
		return Drop{}, false
	}
	m.st = Idle{}
	drop := Drop{Sample: d.Sample}
	for _, a := range areas {
		if a.Contains(at) {
			drop.Bucket = a.Label
			drop.Inside = true
			break
		}
	}
	return drop, true
}

// Apply records a drop: inside a bucket overwrites the assignment, outside
// every bucket clears it.
func Apply(d Drop, p scoring.Partition) {
	if d.Inside {
		p.Assign(d.Sample, d.Bucket)
		return
	}
	p.Unassign(d.Sample)
}
