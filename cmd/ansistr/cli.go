package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/encoding/charmap"

	"github.com/dshills/ansistr/internal/config"
	"github.com/dshills/ansistr/internal/engine/buffer"
	"github.com/dshills/ansistr/internal/gate"
	"github.com/dshills/ansistr/internal/logging"
	"github.com/dshills/ansistr/internal/metrics"
)

// Exit codes follow grep: 1 when nothing matched, 2 on errors.
const (
	exitOK       = 0
	exitNoMatch  = 1
	exitError    = 2
	exitCanceled = 130
)

// errNoMatch ends a search command that found nothing without printing an error.
var errNoMatch = errors.New("no match")

type globalOptions struct {
	configPath string
	logLevel   string
	timeout    time.Duration
	progress   time.Duration
	metrics    bool
	encoding   string
}

// cli carries the streams and state shared by all commands.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	opts    globalOptions
	cfg     *config.Config
	charset *charmap.Charmap
	reg     *prometheus.Registry
	obs     *metrics.Observer
	gated   bool
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{in: in, out: out, errOut: errOut}
}

func (c *cli) run(ctx context.Context, args []string) int {
	cmd := newRootCommand(c)
	cmd.SetArgs(args)
	cmd.SetIn(c.in)
	cmd.SetOut(c.out)
	cmd.SetErr(c.errOut)

	err := cmd.ExecuteContext(ctx)
	if derr := c.dumpMetrics(); derr != nil && err == nil {
		err = derr
	}
	c.close()

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errNoMatch):
		return exitNoMatch
	case errors.Is(err, buffer.ErrCanceled):
		fmt.Fprintf(c.errOut, "Interrupted: %v\n", err)
		return exitCanceled
	default:
		fmt.Fprintf(c.errOut, "Error: %v\n", err)
		return exitError
	}
}

func newRootCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ansistr [OPTIONS] COMMAND",
		Short:         "Search and edit byte strings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Flags())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&c.opts.configPath, "config", "c", "", "Path to configuration file (TOML or YAML)")
	flags.StringVar(&c.opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.DurationVar(&c.opts.timeout, "timeout", 0, "Cancel the operation after this long (0 disables)")
	flags.DurationVar(&c.opts.progress, "progress", 0, "Log progress at this interval (0 disables)")
	flags.BoolVar(&c.opts.metrics, "metrics", false, "Print buffer metrics to stderr when done")
	flags.StringVar(&c.opts.encoding, "encoding", encodingRaw, "Byte encoding of input and output (raw, windows-1252, iso-8859-1)")

	cmd.AddCommand(
		newFindCommand(c),
		newCountCommand(c),
		newReplaceCommand(c),
		newRemoveCommand(c),
		newInsertCommand(c),
		newCutCommand(c),
		newTrimCommand(c),
		newSplitCommand(c),
		newFillCommand(c),
		newLicenseCommand(c),
		newConfigCommand(c),
		newVersionCommand(c),
	)
	return cmd
}

// setup loads configuration and applies logging, encoding and metrics flags.
func (c *cli) setup(flags *pflag.FlagSet) error {
	var opts []config.Option
	if c.opts.configPath != "" {
		opts = append(opts, config.WithFile(c.opts.configPath))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return errors.Wrap(err, "loading configuration")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = c.opts.logLevel
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, c.errOut); err != nil {
		return err
	}
	c.cfg = cfg

	c.charset, err = parseEncoding(c.opts.encoding)
	if err != nil {
		return err
	}

	if c.opts.metrics {
		c.reg = prometheus.NewRegistry()
		c.obs = metrics.NewObserver(c.reg)
	}

	logrus.WithFields(logrus.Fields{
		"config":   cfg.File(),
		"encoding": c.opts.encoding,
	}).Debug("configuration loaded")
	return nil
}

// openGate activates the configured license once per process.
func (c *cli) openGate() error {
	if c.gated {
		return nil
	}
	if c.cfg.License == (gate.License{}) {
		return errors.New("no license configured; create one with 'ansistr license sign'")
	}
	if err := gate.Init(c.cfg.License); err != nil {
		return err
	}
	c.gated = true
	return nil
}

func (c *cli) close() {
	if c.gated {
		gate.Uninit()
		c.gated = false
	}
}

func (c *cli) bufferOptions() []buffer.Option {
	opts := c.cfg.BufferOptions()
	if c.obs != nil {
		opts = append(opts, buffer.WithObserver(c.obs))
	}
	return opts
}

func (c *cli) dumpMetrics() error {
	if c.reg == nil {
		return nil
	}
	return metrics.Dump(c.errOut, c.reg)
}
