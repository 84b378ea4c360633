package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/audiosort/dataset"
	"github.com/maastricht-university/audiosort/orchestrator"
	"github.com/maastricht-university/audiosort/segment"
)

var (
	segmentBindings = map[string]string{
		"segment.length":         "length",
		"segment.keep_remaining": "keep-remaining",
		"segment.prefix":         "prefix",
	}
	splitBindings = map[string]string{
		"split.ratio": "ratio",
		"split.seed":  "seed",
	}
	pruneBindings = map[string]string{
		"prune.min_files": "min-files",
		"prune.rename":    "rename",
		"prune.base_name": "base-name",
	}
)

func segmentFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("length", 6, "segment length in seconds")
	cmd.Flags().Bool("keep-remaining", true, "zero-pad the trailing partial segment instead of dropping it")
	cmd.Flags().String("prefix", "combined", "output file name prefix")
}

func pruneFlags(cmd *cobra.Command) {
	cmd.Flags().Int("min-files", 5, "minimum files per class in both train and test")
	cmd.Flags().Bool("rename", true, "rename surviving classes to <base-name>_<n>")
	cmd.Flags().String("base-name", "class", "base name for canonical class names")
}

func merge(ms ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, m := range ms {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

func (a *app) segmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment INPUT_DIR OUTPUT_DIR",
		Short: "concatenate each class directory and cut it into fixed-length clips",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, segmentBindings); err != nil {
				return err
			}
			res, err := segment.NewEngine(a.store, a.log).Run(args[0], args[1], segment.Options{
				Length:        a.cfg.Segment.Length,
				KeepRemaining: a.cfg.Segment.KeepRemaining,
				Prefix:        a.cfg.Segment.Prefix,
			})
			if err != nil {
				return err
			}
			renderSegments(a.out, res)
			return nil
		},
	}
	segmentFlags(cmd)
	return cmd
}

func (a *app) splitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split INPUT_DIR OUTPUT_DIR",
		Short: "copy each class into OUTPUT_DIR/train and OUTPUT_DIR/test",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, splitBindings); err != nil {
				return err
			}
			res, err := dataset.NewStage(a.store, a.log).Split(args[0], args[1], a.cfg.Split.Ratio, a.cfg.Split.Seed)
			if err != nil {
				return err
			}
			renderSplit(a.out, res)
			return nil
		},
	}
	cmd.Flags().Float64("ratio", 0.8, "fraction of each class that goes to train")
	cmd.Flags().Int64("seed", 42, "shuffle seed")
	return cmd
}

func (a *app) pruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune ROOT",
		Short: "drop classes with too few files under ROOT/train or ROOT/test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, pruneBindings); err != nil {
				return err
			}
			st := dataset.NewStage(a.store, a.log)
			res, err := st.Prune(args[0], a.cfg.Prune.MinFiles)
			if err != nil {
				return err
			}
			renderPrune(a.out, res)
			if !a.cfg.Prune.Rename {
				return nil
			}
			rr, err := st.RenameCanonical(args[0], a.cfg.Prune.BaseName)
			if err != nil {
				return err
			}
			renderRename(a.out, rr)
			return nil
		},
	}
	pruneFlags(cmd)
	return cmd
}

func (a *app) pipelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "run split, segment, prune and rename from the configured paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindings := merge(segmentBindings, pruneBindings, map[string]string{
				"split.enabled": "split",
				"split.ratio":   "ratio",
				"split.seed":    "split-seed",
				"paths.input":   "input",
				"paths.staging": "staging",
				"paths.outputs": "outputs",
			})
			if err := a.load(cmd, bindings); err != nil {
				return err
			}
			r, err := orchestrator.NewPipeline(a.cfg, a.store, a.log).Run(cmd.Context())
			if err != nil {
				return err
			}
			if len(r.Split) > 0 {
				renderSplit(a.out, r.Split)
			}
			renderTotals(a.out, r.Totals())
			renderPrune(a.out, r.Prune)
			fmt.Fprintf(a.out, "run %s: %d classes kept, %d removed\n", r.RunID, len(r.Prune.Kept), len(r.Prune.Removed))
			return nil
		},
	}
	segmentFlags(cmd)
	pruneFlags(cmd)
	cmd.Flags().Bool("split", true, "split the input root before segmenting")
	cmd.Flags().Float64("ratio", 0.8, "fraction of each class that goes to train")
	cmd.Flags().Int64("split-seed", 42, "shuffle seed for the split")
	cmd.Flags().String("input", "", "dataset root with one directory per class")
	cmd.Flags().String("staging", "", "where the split copies go")
	cmd.Flags().String("outputs", "", "root of the segmented train and test trees")
	return cmd
}
