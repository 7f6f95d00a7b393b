// Package loader reads configuration sources into generic maps.
//
// File sources are TOML or YAML, chosen by extension. Environment variables
// with a common prefix form a further source. Maps from several sources are
// combined with DeepMerge, later sources overriding earlier ones.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for files whose extension has no decoder.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Source is one configuration layer. Load returns nil, nil when the source
// does not exist.
type Source interface {
	Load() (map[string]any, error)
}

// FileSystem is the part of a file system the loaders read through.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS reads the real file system.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (OSFS) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format is a configuration file syntax.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// FileLoader loads configuration from a TOML or YAML file.
type FileLoader struct {
	fs     FileSystem
	path   string
	format Format
}

// NewFileLoader creates a loader for path, choosing the format by extension.
func NewFileLoader(path string) (*FileLoader, error) {
	return NewFileLoaderWithFS(DefaultFS(), path)
}

// NewFileLoaderWithFS creates a file loader with a custom file system.
func NewFileLoaderWithFS(fsys FileSystem, path string) (*FileLoader, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return &FileLoader{fs: fsys, path: path, format: format}, nil
}

// Path returns the configured path.
func (l *FileLoader) Path() string {
	return l.path
}

// Load reads configuration from the configured path.
func (l *FileLoader) Load() (map[string]any, error) {
	return l.LoadWithIncludes(l.path, MaxIncludeDepth)
}

// LoadFrom reads a single file without following includes.
func (l *FileLoader) LoadFrom(path string) (map[string]any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return parse(format, path, data)
}

// LoadFromReader reads configuration in the loader's format from r.
func (l *FileLoader) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(l.format, "<reader>", data)
}

func parse(format Format, source string, data []byte) (map[string]any, error) {
	var config map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
		}
	default:
		if err := toml.Unmarshal(data, &config); err != nil {
			perr := &ParseError{Path: source, Message: err.Error(), Err: err}
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				perr.Line, perr.Column = derr.Position()
			}
			return nil, perr
		}
	}
	return config, nil
}

// MaxIncludeDepth bounds nested @include directives.
const MaxIncludeDepth = 5

// LoadWithIncludes loads a file and the files named by its "@include" key.
// Included files may use either format; the including file wins on conflicts.
func (l *FileLoader) LoadWithIncludes(path string, maxDepth int) (map[string]any, error) {
	if maxDepth <= 0 {
		return nil, fmt.Errorf("include depth exceeded for %s", path)
	}

	config, err := l.LoadFrom(path)
	if err != nil || config == nil {
		return config, err
	}

	includes, ok := config["@include"]
	if !ok {
		return config, nil
	}
	delete(config, "@include")

	var list []string
	switch v := includes.(type) {
	case string:
		list = []string{v}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("@include must be string or array of strings")
			}
			list = append(list, s)
		}
	default:
		return nil, fmt.Errorf("@include must be string or array of strings, got %T", includes)
	}

	baseDir := filepath.Dir(path)
	for _, inc := range list {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(baseDir, inc)
		}
		sub, err := l.LoadWithIncludes(inc, maxDepth-1)
		if err != nil {
			return nil, fmt.Errorf("loading include %s: %w", inc, err)
		}
		config = DeepMerge(sub, config)
	}
	return config, nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Encode renders a map in the given format.
func Encode(format Format, m map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	default:
		if err := toml.NewEncoder(&buf).Encode(m); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
