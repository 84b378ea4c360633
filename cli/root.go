package cli

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/audiosort/config"
	"github.com/maastricht-university/audiosort/logging"
	"github.com/maastricht-university/audiosort/playback"
	"github.com/maastricht-university/audiosort/storage"
)

// app carries what every subcommand shares. Tests swap the streams, the
// store and the player.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	store  *storage.Store
	player playback.Player // nil: built from config

	configPath string
	cfg        *cfg.Root
	log        *logrus.Logger
}

func newApp(in io.Reader, out, errOut io.Writer, store *storage.Store) *app {
	return &app{in: in, out: out, errOut: errOut, store: store}
}

// NewRootCmd wires the audiosort command tree against the OS filesystem and
// the process streams.
func NewRootCmd() *cobra.Command {
	return newApp(os.Stdin, os.Stdout, os.Stderr, storage.NewOS()).rootCmd()
}

func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "audiosort",
		Short:         "audio clustering game and dataset preparation tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: config/$CONFIG_ENV/config.yaml, then config.yaml)")
	root.PersistentFlags().String("log-level", "", "debug, info, warn or error")

	root.AddCommand(
		a.gameCmd(),
		a.segmentCmd(),
		a.splitCmd(),
		a.pruneCmd(),
		a.pipelineCmd(),
	)
	return root
}

// load resolves the configuration for cmd: defaults, then the YAML file,
// then AUDIOSORT_* variables, then the flags named in bindings.
func (a *app) load(cmd *cobra.Command, bindings map[string]string) error {
	c, err := cfg.Load(a.configPath)
	if err != nil {
		return err
	}
	all := map[string]string{"pipeline.log_level": "log-level"}
	for k, v := range bindings {
		all[k] = v
	}
	if err := cfg.Overlay(c, cmd.Flags(), all); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	a.cfg = c
	a.log = logging.NewWithWriter(c.Pipeline.LogLvl, a.errOut)
	return nil
}
