package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/ansistr/internal/engine/buffer"
	"github.com/dshills/ansistr/internal/engine/cancel"
)

// edit copies the input into an owned buffer, applies fn under a
// cancellation token and writes the result.
func (c *cli) edit(ctx context.Context, op string, args []string, input int, output string, fn func(b *buffer.StringBuffer, tok *cancel.Token) error) error {
	data, err := c.readInput(args, input)
	if err != nil {
		return err
	}
	b, err := c.own(data)
	if err != nil {
		return err
	}
	defer b.Destroy()

	if err := c.execute(ctx, op, func(tok *cancel.Token) error { return fn(b, tok) }); err != nil {
		return err
	}
	return c.emit(output, b)
}

func (c *cli) emit(output string, b *buffer.StringBuffer) error {
	w, closeOutput, err := c.output(output)
	if err != nil {
		return err
	}
	if err := c.writeContent(w, b.Bytes(), false); err != nil {
		_ = closeOutput()
		return errors.Wrap(err, "writing output")
	}
	return closeOutput()
}

func newReplaceCommand(c *cli) *cobra.Command {
	var (
		window windowOptions
		output string
	)

	cmd := &cobra.Command{
		Use:   "replace [OPTIONS] OLD NEW [FILE]",
		Short: "Replace every occurrence of OLD with NEW",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := c.pattern(args[0])
			if err != nil {
				return err
			}
			after, err := c.arg(args[1])
			if err != nil {
				return err
			}
			return c.edit(cmd.Context(), "replace", args, 2, output, func(b *buffer.StringBuffer, tok *cancel.Token) error {
				if b.Size() == 0 {
					return nil
				}
				return b.Replace(window.from, window.to, before, len(before), after, len(after), true, tok)
			})
		},
	}
	flags := cmd.Flags()
	addWindowFlags(flags, &window)
	flags.StringVarP(&output, "output", "o", "", "Write the result to a file")

	return cmd
}

func newRemoveCommand(c *cli) *cobra.Command {
	var (
		window windowOptions
		output string
	)

	cmd := &cobra.Command{
		Use:   "remove [OPTIONS] PATTERN [FILE]",
		Short: "Delete every occurrence of PATTERN",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pat, err := c.pattern(args[0])
			if err != nil {
				return err
			}
			return c.edit(cmd.Context(), "remove", args, 1, output, func(b *buffer.StringBuffer, tok *cancel.Token) error {
				if b.Size() == 0 {
					return nil
				}
				return b.Remove(window.from, window.to, pat, len(pat), tok)
			})
		},
	}
	flags := cmd.Flags()
	addWindowFlags(flags, &window)
	flags.StringVarP(&output, "output", "o", "", "Write the result to a file")

	return cmd
}

// parsePosition accepts a byte offset or "end".
func parsePosition(s string) (int, error) {
	if strings.EqualFold(s, "end") {
		return buffer.End, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Errorf("invalid position %q", s)
	}
	return n, nil
}

func newInsertCommand(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "insert [OPTIONS] POS TEXT [FILE]",
		Short: "Insert TEXT at byte position POS (or \"end\")",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			text, err := c.pattern(args[1])
			if err != nil {
				return err
			}
			return c.edit(cmd.Context(), "insert", args, 2, output, func(b *buffer.StringBuffer, tok *cancel.Token) error {
				return b.Insert(pos, text, len(text), true, tok)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file")

	return cmd
}

func newCutCommand(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "cut [OPTIONS] POS COUNT [FILE]",
		Short: "Delete COUNT bytes starting at POS",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Errorf("invalid position %q", args[0])
			}
			count, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Errorf("invalid count %q", args[1])
			}
			return c.edit(cmd.Context(), "cut", args, 2, output, func(b *buffer.StringBuffer, tok *cancel.Token) error {
				return b.RemoveFrom(pos, count, tok)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file")

	return cmd
}

func newTrimCommand(c *cli) *cobra.Command {
	var (
		window      windowOptions
		set         string
		left, right bool
		output      string
	)

	cmd := &cobra.Command{
		Use:   "trim [OPTIONS] [FILE]",
		Short: "Strip leading and trailing bytes found in a set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chars, err := c.pattern(set)
			if err != nil {
				return err
			}
			return c.edit(cmd.Context(), "trim", args, 0, output, func(b *buffer.StringBuffer, tok *cancel.Token) error {
				var err error
				switch {
				case left && !right:
					err = b.TrimLeft(window.from, window.to, chars, len(chars), tok)
				case right && !left:
					err = b.TrimRight(window.from, window.to, chars, len(chars), tok)
				default:
					err = b.Trim(window.from, window.to, chars, len(chars), tok)
				}
				switch buffer.ReasonOf(err) {
				case buffer.ReasonEmpty, buffer.ReasonNothingTrimmed:
					return nil
				}
				return err
			})
		},
	}
	flags := cmd.Flags()
	addWindowFlags(flags, &window)
	flags.StringVar(&set, "set", " \t\r\n", "Bytes to strip")
	flags.BoolVar(&left, "left", false, "Strip leading bytes only")
	flags.BoolVar(&right, "right", false, "Strip trailing bytes only")
	flags.StringVarP(&output, "output", "o", "", "Write the result to a file")

	return cmd
}

// parseByte accepts a single character or a number such as 65 or 0x41.
func parseByte(s string) (byte, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, errors.Errorf("invalid byte %q", s)
	}
	return byte(n), nil
}

func newFillCommand(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fill [OPTIONS] COUNT BYTE",
		Short: "Print COUNT copies of BYTE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil || count < 1 {
				return errors.Errorf("invalid count %q", args[0])
			}
			fill, err := parseByte(args[1])
			if err != nil {
				return err
			}
			b, err := c.own(nil)
			if err != nil {
				return err
			}
			defer b.Destroy()

			err = c.execute(cmd.Context(), "fill", func(tok *cancel.Token) error {
				// The terminator takes the last reserved slot.
				return b.ReserveAndInit(count+1, fill, tok)
			})
			if err != nil {
				return err
			}
			return c.emit(output, b)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file")

	return cmd
}
