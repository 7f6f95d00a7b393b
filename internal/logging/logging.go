// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Supported formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Setup sets the level, formatter and output of the standard logger.
// An empty level means info; an empty format means text.
func Setup(level, format string, w io.Writer) error {
	lvl := logrus.InfoLevel
	if level != "" {
		var err error
		lvl, err = logrus.ParseLevel(level)
		if err != nil {
			return errors.Wrapf(err, "unable to parse logging level %q", level)
		}
	}

	f, err := Formatter(format)
	if err != nil {
		return err
	}

	logrus.SetLevel(lvl)
	logrus.SetFormatter(f)
	if w != nil {
		logrus.SetOutput(w)
	}
	return nil
}

// Formatter returns the logrus formatter for a format name.
func Formatter(format string) (logrus.Formatter, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return &logrus.TextFormatter{FullTimestamp: true, DisableColors: true}, nil
	case FormatJSON:
		return &logrus.JSONFormatter{}, nil
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
}
