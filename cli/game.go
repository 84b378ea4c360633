package cli

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maastricht-university/audiosort/drag"
	"github.com/maastricht-university/audiosort/game"
	"github.com/maastricht-university/audiosort/playback"
	"github.com/maastricht-university/audiosort/session"
)

var gameBindings = map[string]string{
	"game.dataset":           "dataset",
	"game.scratch":           "scratch",
	"game.classes":           "classes",
	"game.samples_per_class": "per-class",
	"game.buckets":           "buckets",
	"game.width":             "width",
	"game.seed":              "seed",
	"game.player.command":    "player",
}

func (a *app) gameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "sort shuffled clips into buckets and score the grouping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd, gameBindings); err != nil {
				return err
			}
			g, err := a.newGame()
			if errors.Is(err, session.ErrInsufficientSamples) {
				fmt.Fprintf(a.out, "Insufficient data: %v\n", err)
				return err
			}
			if err != nil {
				return err
			}
			defer func() {
				if err := g.Close(); err != nil {
					a.log.WithError(err).Warn("cleanup scratch")
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return newREPL(g, a.out).run(ctx, a.in)
		},
	}
	cmd.Flags().String("dataset", "", "dataset root with one directory per class")
	cmd.Flags().String("scratch", "", "directory for the session's clip copies")
	cmd.Flags().StringSlice("classes", nil, "classes to sample from")
	cmd.Flags().Int("per-class", 0, "samples drawn from each class")
	cmd.Flags().StringSlice("buckets", nil, "bucket labels, one per class")
	cmd.Flags().Int("width", 0, "play field width")
	cmd.Flags().Int64("seed", 0, "sampling seed, 0 picks one from the clock")
	cmd.Flags().String("player", "", "playback command, \"none\" disables audio")
	return cmd
}

func (a *app) newGame() (*game.Game, error) {
	gc := a.cfg.Game
	seed := gc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	b := session.NewBuilder(a.store, gc.Dataset, gc.Scratch, rand.New(rand.NewSource(seed)), a.log.WithField("component", "session"))

	p := a.player
	if p == nil {
		p = newPlayer(gc.Player.Command, gc.Player.Args)
	}
	return game.New(b, p, game.Options{
		Classes:  gc.Classes,
		PerClass: gc.SamplesPerClass,
		Buckets:  gc.Buckets,
		Width:    gc.Width,
		Layout:   drag.DefaultLayout(),
	}, a.log.WithField("component", "game"))
}

func newPlayer(bin string, args []string) playback.Player {
	if bin == "" || bin == "none" {
		return &playback.Nop{}
	}
	if len(args) == 0 {
		args = playback.DefaultArgs(bin)
	}
	return playback.NewExecPlayer(bin, args...)
}
