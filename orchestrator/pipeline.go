package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	cfg "github.com/maastricht-university/audiosort/config"
	"github.com/maastricht-university/audiosort/dataset"
	"github.com/maastricht-university/audiosort/segment"
	"github.com/maastricht-university/audiosort/storage"
)

// Pipeline runs split -> segment -> prune -> rename over a dataset root.
type Pipeline struct {
	cfg   *cfg.Root
	store *storage.Store
	seg   *segment.Engine
	ds    *dataset.Stage
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewPipeline(c *cfg.Root, store *storage.Store, log logrus.FieldLogger) *Pipeline {
	return &Pipeline{
		cfg:   c,
		store: store,
		seg:   segment.NewEngine(store, log.WithField("stage", StageSegment)),
		ds:    dataset.NewStage(store, log),
		log:   log,
		now:   time.Now,
	}
}

// Run executes the configured stages. Without the split stage the input
// root must already hold train/ and test/ trees.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	started := p.now()
	r := &Report{
		RunID:       newRunID(started),
		Name:        p.cfg.Pipeline.Name,
		Version:     p.cfg.Pipeline.Version,
		GeneratedAt: started,
		Segments:    map[string][]segment.ClassResult{},
	}
	paths := p.cfg.Paths

	if err := ctx.Err(); err != nil {
		return r, err
	}
	segInput := paths.Input
	if p.cfg.Split.Enabled {
		// a previous split with another seed or ratio must not leak into this one
		for _, tree := range trees {
			if err := p.store.ResetDir(filepath.Join(paths.Staging, tree)); err != nil {
				return r, fmt.Errorf("split: %w", err)
			}
		}
		split, err := p.ds.Split(paths.Input, paths.Staging, p.cfg.Split.Ratio, p.cfg.Split.Seed)
		if err != nil {
			return r, fmt.Errorf("split: %w", err)
		}
		r.Split = split
		r.Stages = append(r.Stages, StageSplit)
		segInput = paths.Staging
	}

	opts := segment.Options{
		Length:        p.cfg.Segment.Length,
		KeepRemaining: p.cfg.Segment.KeepRemaining,
		Prefix:        p.cfg.Segment.Prefix,
	}
	for _, tree := range trees {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		out := filepath.Join(paths.Outputs, tree)
		if err := p.store.ResetDir(out); err != nil {
			return r, fmt.Errorf("segment %s: %w", tree, err)
		}
		res, err := p.seg.Run(filepath.Join(segInput, tree), out, opts)
		if err != nil {
			return r, fmt.Errorf("segment %s: %w", tree, err)
		}
		r.Segments[tree] = res
	}
	r.Stages = append(r.Stages, StageSegment)

	if err := ctx.Err(); err != nil {
		return r, err
	}
	pr, err := p.ds.Prune(paths.Outputs, p.cfg.Prune.MinFiles)
	if err != nil {
		return r, fmt.Errorf("prune: %w", err)
	}
	r.Prune = pr
	r.Stages = append(r.Stages, StagePrune)

	if p.cfg.Prune.Rename {
		rr, err := p.ds.RenameCanonical(paths.Outputs, p.cfg.Prune.BaseName)
		if err != nil {
			return r, fmt.Errorf("rename: %w", err)
		}
		r.Rename = &rr
		r.Stages = append(r.Stages, StageRename)
	}

	path, err := persist(p.store, paths.Outputs, r)
	if err != nil {
		return r, fmt.Errorf("report: %w", err)
	}
	p.log.WithFields(logrus.Fields{
		"run":     r.RunID,
		"kept":    len(r.Prune.Kept),
		"removed": len(r.Prune.Removed),
		"report":  path,
	}).Info("pipeline finished")
	return r, nil
}
