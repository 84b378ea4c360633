package cli

import (
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/maastricht-university/audiosort/dataset"
	"github.com/maastricht-university/audiosort/orchestrator"
	"github.com/maastricht-university/audiosort/scoring"
	"github.com/maastricht-university/audiosort/segment"
)

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	return t
}

// seconds prints at most two decimals without trailing zeros.
func seconds(v float64) string {
	return humanize.Ftoa(math.Round(v*100) / 100)
}

func renderSegments(w io.Writer, res []segment.ClassResult) {
	t := newTable(w, "CLASS", "FILES", "RATE", "SECONDS", "SEGMENTS", "PADDED")
	for _, c := range res {
		padded := 0
		for _, s := range c.Segments {
			if s.Padded {
				padded++
			}
		}
		t.Append([]string{
			c.Class,
			strconv.Itoa(c.Files),
			strconv.Itoa(c.SampleRate),
			seconds(c.Seconds),
			strconv.Itoa(len(c.Segments)),
			strconv.Itoa(padded),
		})
	}
	t.Render()
}

func renderSplit(w io.Writer, res []dataset.SplitResult) {
	t := newTable(w, "CLASS", "TRAIN", "TEST")
	for _, r := range res {
		t.Append([]string{r.Class, strconv.Itoa(len(r.Train)), strconv.Itoa(len(r.Test))})
	}
	t.Render()
}

func renderPrune(w io.Writer, res dataset.PruneResult) {
	type row struct {
		dataset.ClassCount
		status string
	}
	var rows []row
	for _, c := range res.Kept {
		rows = append(rows, row{c, "kept"})
	}
	for _, c := range res.Removed {
		rows = append(rows, row{c, "removed"})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Class < rows[j].Class })

	t := newTable(w, "CLASS", "TRAIN", "TEST", "STATUS")
	for _, r := range rows {
		t.Append([]string{r.Class, strconv.Itoa(r.Train), strconv.Itoa(r.Test), r.status})
	}
	t.Render()
}

func renderRename(w io.Writer, res dataset.RenameResult) {
	t := newTable(w, "TREE", "CLASS", "RENAMED")
	for _, tree := range []struct {
		name    string
		mapping map[string]string
	}{{dataset.TrainDir, res.Train}, {dataset.TestDir, res.Test}} {
		classes := make([]string, 0, len(tree.mapping))
		for c := range tree.mapping {
			classes = append(classes, c)
		}
		sort.Strings(classes)
		for _, c := range classes {
			t.Append([]string{tree.name, c, tree.mapping[c]})
		}
	}
	t.Render()
}

func renderTotals(w io.Writer, totals []orchestrator.TreeTotal) {
	t := newTable(w, "TREE", "CLASSES", "SEGMENTS", "PADDED", "SECONDS")
	for _, tt := range totals {
		t.Append([]string{
			tt.Tree,
			strconv.Itoa(tt.Classes),
			strconv.Itoa(tt.Segments),
			strconv.Itoa(tt.Padded),
			seconds(tt.Seconds),
		})
	}
	t.Render()
}

// renderFeedback lists samples by token. tokens maps sample ID to token.
func renderFeedback(w io.Writer, res scoring.Result, tokens map[string]string) {
	rows := make([]scoring.SampleFeedback, len(res.Feedback))
	copy(rows, res.Feedback)
	sort.Slice(rows, func(i, j int) bool {
		a, _ := strconv.Atoi(tokens[rows[i].ID])
		b, _ := strconv.Atoi(tokens[rows[j].ID])
		return a < b
	})

	t := newTable(w, "TOKEN", "TRUE", "ASSIGNED", "COLOR", "CORRECT")
	for _, f := range rows {
		assigned := f.Assigned
		if assigned == "" {
			assigned = "-"
		}
		correct := ""
		if f.Correct {
			correct = "yes"
		}
		t.Append([]string{tokens[f.ID], f.TrueLabel, assigned, f.Color, correct})
	}
	t.Render()
}
