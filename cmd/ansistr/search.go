package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dshills/ansistr/internal/engine/buffer"
	"github.com/dshills/ansistr/internal/engine/cancel"
	"github.com/dshills/ansistr/internal/engine/search"
)

// windowOptions selects the inclusive search window [from, to].
type windowOptions struct {
	from int
	to   int
}

func addWindowFlags(flags *pflag.FlagSet, w *windowOptions) {
	flags.IntVar(&w.from, "from", 0, "First position of the window")
	flags.IntVar(&w.to, "to", buffer.End, "Last position of the window (-1 for the end)")
}

// method resolves a --method flag, falling back to the configured method.
func (c *cli) method(name string) (search.Method, error) {
	if name == "" {
		return c.cfg.SearchMethod(), nil
	}
	return search.ParseMethod(name)
}

func (c *cli) pattern(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("pattern must not be empty")
	}
	return c.arg(s)
}

type findOptions struct {
	window  windowOptions
	method  string
	reverse bool
	all     bool
	anyOf   bool
	notOf   bool
}

func newFindCommand(c *cli) *cobra.Command {
	var opts findOptions

	cmd := &cobra.Command{
		Use:   "find [OPTIONS] PATTERN [FILE]",
		Short: "Print the positions where PATTERN occurs",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.anyOf && opts.notOf {
				return errors.New("--any and --not are mutually exclusive")
			}
			return runFind(cmd.Context(), c, opts, args)
		},
	}
	flags := cmd.Flags()
	addWindowFlags(flags, &opts.window)
	flags.StringVar(&opts.method, "method", "", "Pattern search method (auto, naive, skip)")
	flags.BoolVarP(&opts.reverse, "reverse", "r", false, "Search from the end of the window")
	flags.BoolVarP(&opts.all, "all", "a", false, "Print every occurrence")
	flags.BoolVar(&opts.anyOf, "any", false, "Match any single byte of PATTERN")
	flags.BoolVar(&opts.notOf, "not", false, "Match any single byte not in PATTERN")

	return cmd
}

type findFunc func(left, right int, sig cancel.Signal) (int, error)

// finder picks the buffer search that matches the options.
func finder(b *buffer.StringBuffer, pat []byte, m search.Method, opts findOptions) findFunc {
	n := len(pat)
	switch {
	case opts.anyOf && opts.reverse:
		return func(l, r int, sig cancel.Signal) (int, error) { return b.LastOf(l, r, pat, n, sig) }
	case opts.anyOf:
		return func(l, r int, sig cancel.Signal) (int, error) { return b.FirstOf(l, r, pat, n, sig) }
	case opts.notOf && opts.reverse:
		return func(l, r int, sig cancel.Signal) (int, error) { return b.LastNotOf(l, r, pat, n, sig) }
	case opts.notOf:
		return func(l, r int, sig cancel.Signal) (int, error) { return b.FirstNotOf(l, r, pat, n, sig) }
	case n == 1 && opts.reverse:
		return func(l, r int, sig cancel.Signal) (int, error) { return b.RFindSingle(l, r, pat[0], sig) }
	case n == 1:
		return func(l, r int, sig cancel.Signal) (int, error) { return b.FindSingle(l, r, pat[0], sig) }
	case opts.reverse:
		return func(l, r int, sig cancel.Signal) (int, error) { return b.RFind(l, r, pat, n, m, sig) }
	default:
		return func(l, r int, sig cancel.Signal) (int, error) { return b.Find(l, r, pat, n, m, sig) }
	}
}

func runFind(ctx context.Context, c *cli, opts findOptions, args []string) error {
	pat, err := c.pattern(args[0])
	if err != nil {
		return err
	}
	m, err := c.method(opts.method)
	if err != nil {
		return err
	}
	data, err := c.readInput(args, 1)
	if err != nil {
		return err
	}
	b, err := c.attach(data)
	if err != nil {
		return err
	}
	defer b.Destroy()

	size := b.Size()
	if size == 0 {
		return errNoMatch
	}
	find := finder(b, pat, m, opts)

	return c.execute(ctx, "find", func(tok *cancel.Token) error {
		found := false
		left, right := opts.window.from, opts.window.to
		for {
			pos, err := find(left, right, tok)
			if err != nil {
				return err
			}
			if pos == size {
				break
			}
			found = true
			fmt.Fprintln(c.out, pos)

			if !opts.all {
				break
			}
			if opts.reverse {
				// End is -1, so stop before right would wrap to it.
				if right = pos - 1; right < left {
					break
				}
			} else {
				if left = pos + 1; left >= size || (right != buffer.End && left > right) {
					break
				}
			}
		}
		if !found {
			return errNoMatch
		}
		return nil
	})
}

type countOptions struct {
	window  windowOptions
	method  string
	overlap bool
}

func newCountCommand(c *cli) *cobra.Command {
	var opts countOptions

	cmd := &cobra.Command{
		Use:   "count [OPTIONS] PATTERN [FILE]",
		Short: "Print the number of occurrences of PATTERN",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd.Context(), c, opts, args)
		},
	}
	flags := cmd.Flags()
	addWindowFlags(flags, &opts.window)
	flags.StringVar(&opts.method, "method", "", "Pattern search method (auto, naive, skip)")
	flags.BoolVar(&opts.overlap, "overlap", false, "Count overlapping occurrences")

	return cmd
}

func runCount(ctx context.Context, c *cli, opts countOptions, args []string) error {
	pat, err := c.pattern(args[0])
	if err != nil {
		return err
	}
	m, err := c.method(opts.method)
	if err != nil {
		return err
	}
	data, err := c.readInput(args, 1)
	if err != nil {
		return err
	}
	b, err := c.attach(data)
	if err != nil {
		return err
	}
	defer b.Destroy()

	return c.execute(ctx, "count", func(tok *cancel.Token) error {
		n := 0
		if b.Size() > 0 {
			var err error
			n, err = b.Count(opts.window.from, opts.window.to, pat, len(pat), m, opts.overlap, tok)
			if err != nil {
				return err
			}
		}
		fmt.Fprintln(c.out, n)
		if n == 0 {
			return errNoMatch
		}
		return nil
	})
}
