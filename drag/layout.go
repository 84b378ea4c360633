package drag

// Layout holds the geometry of the play field.
type Layout struct {
	AreaY       int
	AreaWidth   int
	AreaHeight  int
	AreaSpacing int

	SlotWidth   int
	SlotHeight  int
	SlotGap     int
	SlotMarginY int
}

func DefaultLayout() Layout {
	return Layout{
		AreaY:       160,
		AreaWidth:   300,
		AreaHeight:  350,
		AreaSpacing: 40,
		SlotWidth:   90,
		SlotHeight:  50,
		SlotGap:     10,
		SlotMarginY: 20,
	}
}

// Areas centers the bucket row in a window of the given width.
func (l Layout) Areas(labels []string, width int) []Area {
	n := len(labels)
	if n == 0 {
		return nil
	}
	total := n*l.AreaWidth + (n-1)*l.AreaSpacing
	startX := max((width-total)/2, 0)
	out := make([]Area, n)
	for i, label := range labels {
		out[i] = Area{
			Label: label,
			Rect: Rect{
				X: startX + i*(l.AreaWidth+l.AreaSpacing),
				Y: l.AreaY,
				W: l.AreaWidth,
				H: l.AreaHeight,
			},
		}
	}
	return out
}

// Slots places unassigned tokens in rows along the top, wrapping to a new
// row when the next slot would pass the right edge.
func (l Layout) Slots(ids []string, width int) map[string]Rect {
	out := make(map[string]Rect, len(ids))
	x, y := l.SlotGap, l.SlotMarginY
	maxX := width - l.SlotWidth - l.SlotGap
	for _, id := range ids {
		if x > maxX {
			x = l.SlotGap
			y += l.SlotHeight + l.SlotGap
		}
		out[id] = Rect{X: x, Y: y, W: l.SlotWidth, H: l.SlotHeight}
		x += l.SlotWidth + l.SlotGap
	}
	return out
}
