package orchestrator

import (
	"time"

	"github.com/maastricht-university/audiosort/dataset"
	"github.com/maastricht-university/audiosort/segment"
)

type Stage string

const (
	StageSplit   Stage = "split"
	StageSegment Stage = "segment"
	StagePrune   Stage = "prune"
	StageRename  Stage = "rename"
)

// Report is written next to the output trees after a run.
type Report struct {
	RunID       string                           `json:"run_id"`
	Name        string                           `json:"name"`
	Version     string                           `json:"version"`
	GeneratedAt time.Time                        `json:"generated_at"`
	Stages      []Stage                          `json:"stages"`
	Split       []dataset.SplitResult            `json:"split,omitempty"`
	Segments    map[string][]segment.ClassResult `json:"segments"` // tree -> classes
	Prune       dataset.PruneResult              `json:"prune"`
	Rename      *dataset.RenameResult            `json:"rename,omitempty"`
}

// TreeTotal summarizes the segments written into one output tree.
type TreeTotal struct {
	Tree     string
	Classes  int
	Segments int
	Padded   int
	Seconds  float64 // input audio
}
