package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dshills/ansistr/internal/config"
	"github.com/dshills/ansistr/internal/config/loader"
	"github.com/dshills/ansistr/internal/gate"
)

func newLicenseCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Create and verify licenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newLicenseSignCommand(c),
		newLicenseCheckCommand(c),
	)
	return cmd
}

type signOptions struct {
	first  string
	last   string
	email  string
	format string
}

func newLicenseSignCommand(c *cli) *cobra.Command {
	var opts signOptions

	cmd := &cobra.Command{
		Use:   "sign [OPTIONS]",
		Short: "Print a license section for the given identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.email == "" {
				return errors.New("--email is required")
			}
			format, err := loader.FormatFor("license." + opts.format)
			if err != nil {
				return err
			}
			l := gate.Sign(opts.first, opts.last, opts.email)
			data, err := loader.Encode(format, map[string]any{
				"license": map[string]any{
					"first_name": l.FirstName,
					"last_name":  l.LastName,
					"email":      l.Email,
					"key":        int64(l.Key),
				},
			})
			if err != nil {
				return err
			}
			_, err = c.out.Write(data)
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.first, "first", "", "First name")
	flags.StringVar(&opts.last, "last", "", "Last name")
	flags.StringVar(&opts.email, "email", "", "Email address")
	flags.StringVar(&opts.format, "format", "toml", "Output format (toml, yaml)")

	return cmd
}

type checkOptions struct {
	watch    bool
	attached bool
}

func newLicenseCheckCommand(c *cli) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check [OPTIONS]",
		Short: "Verify the configured license and open the gate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.checkLicense(c.cfg.License, opts.attached); err != nil {
				return err
			}
			if !opts.watch {
				return nil
			}
			return c.watchLicense(cmd.Context(), opts.attached)
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&opts.watch, "watch", "w", false, "Re-check whenever the configuration file changes")
	flags.BoolVar(&opts.attached, "attached", false, "Keep the gate record in caller memory and print it")

	return cmd
}

// checkLicense activates l and reports the session.
func (c *cli) checkLicense(l gate.License, attached bool) error {
	if l == (gate.License{}) {
		return errors.New("no license configured")
	}
	if !attached {
		if err := gate.Init(l); err != nil {
			return err
		}
		c.gated = true
		fmt.Fprintf(c.out, "license valid for %s, session %s\n", l.Email, gate.Session())
		return nil
	}

	region := make([]byte, gate.RecordSize)
	if _, err := gate.InitAttached(l, region); err != nil {
		return err
	}
	c.gated = true
	session, key, err := gate.ReadRecord(region)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "license valid for %s, session %s, record key %08x\n", l.Email, session, key)
	return nil
}

// watchLicense re-checks the license on every configuration change until
// the command is interrupted.
func (c *cli) watchLicense(ctx context.Context, attached bool) error {
	var opts []config.Option
	if c.opts.configPath != "" {
		opts = append(opts, config.WithFile(c.opts.configPath))
	}
	logrus.WithField("config", c.cfg.File()).Info("watching for license changes")

	return config.Watch(ctx, func(cfg *config.Config, err error) {
		if err == nil {
			err = c.checkLicense(cfg.License, attached)
		}
		if err != nil {
			gate.Uninit()
			c.gated = false
			logrus.WithError(err).Warn("license rejected")
			return
		}
		logrus.WithField("session", gate.Session()).Info("license accepted")
	}, opts...)
}
