package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
	"golang.org/x/text/encoding/charmap"

	"github.com/dshills/ansistr/internal/engine/buffer"
)

// Encoding names accepted by --encoding.
const (
	encodingRaw     = "raw"
	encodingWin1252 = "windows-1252"
	encodingLatin1  = "iso-8859-1"
)

// parseEncoding returns the charmap for name, or nil for raw bytes.
func parseEncoding(name string) (*charmap.Charmap, error) {
	switch strings.ToLower(name) {
	case "", encodingRaw:
		return nil, nil
	case encodingWin1252, "cp1252":
		return charmap.Windows1252, nil
	case encodingLatin1, "latin1":
		return charmap.ISO8859_1, nil
	default:
		return nil, errors.Errorf("unknown encoding %q", name)
	}
}

// arg converts a command-line argument into the working byte encoding.
// The result is never nil.
func (c *cli) arg(s string) ([]byte, error) {
	if c.charset == nil {
		return append([]byte{}, s...), nil
	}
	b, err := c.charset.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrapf(err, "argument %q is not representable in %s", s, c.opts.encoding)
	}
	return append([]byte{}, b...), nil
}

// readInput reads the file named by args[i], or stdin when it is absent or "-".
func (c *cli) readInput(args []string, i int) ([]byte, error) {
	if i < len(args) && args[i] != "-" {
		data, err := os.ReadFile(args[i])
		return data, errors.Wrap(err, "reading input")
	}
	data, err := io.ReadAll(c.in)
	return data, errors.Wrap(err, "reading stdin")
}

// attach wraps data in a buffer whose header and storage live in one
// caller-owned region. Input containing NUL bytes is copied into an owned
// buffer instead, since attached size is taken from the first NUL.
func (c *cli) attach(data []byte) (*buffer.StringBuffer, error) {
	if err := c.openGate(); err != nil {
		return nil, err
	}
	if bytes.IndexByte(data, 0) >= 0 {
		logrus.Debug("input contains NUL bytes, copying into an owned buffer")
		return c.own(data)
	}

	region := make([]byte, buffer.MaxHeaderRoom+len(data)+1)
	b, used, err := buffer.NewAttached(region, c.bufferOptions()...)
	if err != nil {
		return nil, err
	}
	store := region[used:]
	n := copy(store, data)
	if err := b.AttachData(store, 0, n+1, buffer.AttachSizeTerminator); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

// own copies data into a new owned buffer.
func (c *cli) own(data []byte) (*buffer.StringBuffer, error) {
	if err := c.openGate(); err != nil {
		return nil, err
	}
	b, err := buffer.New(c.bufferOptions()...)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return b, nil
	}
	if err := b.Insert(buffer.End, data, len(data), true, nil); err != nil {
		b.Destroy()
		return nil, err
	}
	return b, nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeContent writes buffer bytes to dst, decoding them to UTF-8 when an
// encoding is set. On a terminal, control bytes and undecodable bytes are
// escaped so that embedded escape sequences are shown rather than run, and
// a newline always follows. Elsewhere a newline follows only when asked.
func (c *cli) writeContent(dst io.Writer, data []byte, newline bool) error {
	if c.charset != nil {
		decoded, err := c.charset.NewDecoder().Bytes(data)
		if err != nil {
			return errors.Wrap(err, "decoding output")
		}
		data = decoded
	}
	if isTerminal(dst) {
		_, err := io.WriteString(dst, escape(data)+"\n")
		return err
	}
	if _, err := dst.Write(data); err != nil {
		return err
	}
	if newline {
		_, err := io.WriteString(dst, "\n")
		return err
	}
	return nil
}

func escape(data []byte) string {
	const hex = "0123456789abcdef"
	var sb strings.Builder
	for len(data) > 0 {
		r, n := utf8.DecodeRune(data)
		switch {
		case r == utf8.RuneError && n <= 1:
			sb.WriteString(`\x`)
			sb.WriteByte(hex[data[0]>>4])
			sb.WriteByte(hex[data[0]&0xf])
		case r == '\n' || r == '\t':
			sb.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			sb.WriteString(`\x`)
			sb.WriteByte(hex[r>>4])
			sb.WriteByte(hex[r&0xf])
		default:
			sb.Write(data[:n])
		}
		data = data[n:]
	}
	return sb.String()
}

// output opens the --output file, or returns stdout.
func (c *cli) output(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return c.out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "creating output")
	}
	return f, f.Close, nil
}
