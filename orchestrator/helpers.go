package orchestrator

import (
	"sort"

	"github.com/maastricht-university/audiosort/dataset"
)

var trees = []string{dataset.TrainDir, dataset.TestDir}

// Totals aggregates segment counts per tree, in tree name order.
func (r *Report) Totals() []TreeTotal {
	names := make([]string, 0, len(r.Segments))
	for name := range r.Segments {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]TreeTotal, 0, len(names))
	for _, name := range names {
		t := TreeTotal{Tree: name}
		for _, c := range r.Segments[name] {
			t.Classes++
			t.Seconds += c.Seconds
			for _, s := range c.Segments {
				t.Segments++
				if s.Padded {
					t.Padded++
				}
			}
		}
		out = append(out, t)
	}
	return out
}
