package scoring

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/combin"
)

// Palette colors samples by the index of their true label during feedback.
var Palette = []string{"tomato", "deepskyblue", "orange", "lightgreen", "violet", "gold"}

func Color(index int) string {
	if index < 0 {
		return ""
	}
	return Palette[index%len(Palette)]
}

// Partition maps a sample ID to the bucket the user dropped it in.
// Unassigned samples are absent.
type Partition map[string]string

func (p Partition) Assign(id, bucket string) { p[id] = bucket }

func (p Partition) Unassign(id string) { delete(p, id) }

func (p Partition) Clone() Partition {
	out := make(Partition, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

type SampleFeedback struct {
	ID         string
	TrueLabel  string
	Assigned   string
	ColorIndex int
	Color      string
	Correct    bool // assigned bucket is literally the true label
}

type Result struct {
	BestMatch int
	Total     int
	Mapping   map[string]string // bucket -> true label under a best permutation
	Feedback  []SampleFeedback
}

func (r Result) Score() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.BestMatch) / float64(r.Total) * 100
}

func (r Result) Summary() string {
	return fmt.Sprintf("%d/%d (%.2f%%)", r.BestMatch, r.Total, r.Score())
}

// Validate scores a user partition against the true labels. Every
// permutation of the bucket labels is tried as a relabeling of the user's
// buckets and the best number of agreeing samples is kept, so grouping a
// whole class together earns full credit whichever bucket it landed in.
func Validate(user Partition, truth map[string]string, buckets []string) Result {
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b] = i
	}

	n := len(buckets)
	counts := make([][]int, n)
	for i := range counts {
		counts[i] = make([]int, n)
	}
	for id, zone := range user {
		label, ok := truth[id]
		if !ok {
			continue
		}
		zi, zok := index[zone]
		ti, tok := index[label]
		if zok && tok {
			counts[zi][ti]++
		}
	}

	res := Result{Total: len(truth), Mapping: map[string]string{}}
	if n > 0 {
		var best []int
		for _, perm := range combin.Permutations(n, n) {
			match := 0
			for zone, label := range perm {
				match += counts[zone][label]
			}
			if best == nil || match > res.BestMatch {
				res.BestMatch = match
				best = perm
			}
		}
		for zone, label := range best {
			res.Mapping[buckets[zone]] = buckets[label]
		}
	}

	ids := make([]string, 0, len(truth))
	for id := range truth {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		label := truth[id]
		ci, ok := index[label]
		if !ok {
			ci = -1
		}
		assigned := user[id]
		res.Feedback = append(res.Feedback, SampleFeedback{
			ID:         id,
			TrueLabel:  label,
			Assigned:   assigned,
			ColorIndex: ci,
			Color:      Color(ci),
			Correct:    assigned != "" && assigned == label,
		})
	}
	return res
}
