package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/ansistr/internal/engine/buffer"
	"github.com/dshills/ansistr/internal/engine/cancel"
)

type splitOptions struct {
	seps  string
	width int
}

func newSplitCommand(c *cli) *cobra.Command {
	var opts splitOptions

	cmd := &cobra.Command{
		Use:   "split [OPTIONS] [FILE]",
		Short: "Print the fields between separator bytes, one per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd.Context(), c, opts, args)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.seps, "sep", ",", "Separator bytes; any of them ends a field")
	flags.IntVar(&opts.width, "width", 0, "Split into fixed-width fields instead")

	return cmd
}

func runSplit(ctx context.Context, c *cli, opts splitOptions, args []string) error {
	if opts.width < 0 {
		return errors.Errorf("invalid width %d", opts.width)
	}
	seps, err := c.pattern(opts.seps)
	if err != nil {
		return err
	}
	data, err := c.readInput(args, 0)
	if err != nil {
		return err
	}
	src, err := c.attach(data)
	if err != nil {
		return err
	}
	defer src.Destroy()

	field, err := c.own(nil)
	if err != nil {
		return err
	}
	defer field.Destroy()

	return c.execute(ctx, "split", func(tok *cancel.Token) error {
		size := src.Size()
		for pos := 0; pos < size; {
			var (
				next int
				err  error
			)
			if opts.width > 0 {
				next, err = src.CopySubBufferFrom(pos, min(opts.width, size-pos), field, tok)
			} else {
				next, err = src.CopySubBuffer(pos, buffer.End, seps, len(seps), field, tok)
			}
			if err != nil {
				return err
			}
			if err := c.writeContent(c.out, field.Bytes(), true); err != nil {
				return err
			}
			pos = next
		}
		return nil
	})
}
