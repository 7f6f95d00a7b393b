package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/dshills/ansistr/internal/config/loader"
	"github.com/dshills/ansistr/internal/engine/buffer"
	"github.com/dshills/ansistr/internal/engine/search"
	"github.com/dshills/ansistr/internal/gate"
)

var ignoreFile = cmpopts.IgnoreUnexported(Config{})

// isolate points the default location at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(WithoutEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg, ignoreFile); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.File() != "" {
		t.Errorf("File() = %q, want empty", cfg.File())
	}
	if cfg.SearchMethod() != search.MethodAuto {
		t.Errorf("SearchMethod() = %v", cfg.SearchMethod())
	}
	if cfg.Tuning() != search.DefaultTuning {
		t.Errorf("Tuning() = %+v", cfg.Tuning())
	}
}

func TestLoad_DefaultPath(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "ansistr", "config.yaml"), "buffer:\n  embed_size: 32\n")

	cfg, err := Load(WithoutEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Buffer.EmbedSize != 32 {
		t.Errorf("EmbedSize = %d, want 32", cfg.Buffer.EmbedSize)
	}
	if !strings.HasSuffix(cfg.File(), "config.yaml") {
		t.Errorf("File() = %q", cfg.File())
	}
}

func TestLoad_Layers(t *testing.T) {
	isolate(t)
	lic := gate.Sign("Ada", "Lovelace", "ada@example.com")
	path := filepath.Join(t.TempDir(), "ansistr.toml")
	writeFile(t, path, `
[license]
first_name = "Ada"
last_name = "Lovelace"
email = "ada@example.com"
key = `+strconv.FormatUint(uint64(lic.Key), 10)+`

[buffer]
embed_size = 64
pooled = true

[search]
method = "naive"
min_window = 512

[logging]
level = "warn"
`)
	t.Setenv("ANSISTR_BUFFER_EMBED_SIZE", "128")
	t.Setenv("ANSISTR_LOG_FORMAT", "json")

	cfg, err := Load(WithFile(path))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	want.License = lic
	want.Buffer.EmbedSize = 128
	want.Buffer.Pooled = true
	want.Search.Method = "naive"
	want.Search.MinWindow = 512
	want.Logging.Level = "warn"
	want.Logging.Format = "json"

	if diff := cmp.Diff(want, cfg, ignoreFile); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.File() != path {
		t.Errorf("File() = %q, want %q", cfg.File(), path)
	}
	if _, ok := cfg.Allocator().(*buffer.PoolAllocator); !ok {
		t.Errorf("pooled config should use PoolAllocator, got %T", cfg.Allocator())
	}
}


func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := Load(WithFile(filepath.Join(t.TempDir(), "nope.toml")), WithoutEnv())
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestLoad_ParseError(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	writeFile(t, path, "[buffer\n")

	_, err := Load(WithFile(path), WithoutEnv())
	var perr *loader.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *loader.ParseError, got %T: %v", err, err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)

	tests := []struct {
		name    string
		content string
		path    string
		code    ValidationErrorCode
	}{
		{"unknown key", "[buffer]\nembedsize = 4\n", "buffer.embedsize", ErrCodeUnknownSetting},
		{"unknown section", "[editor]\ntab = 4\n", "editor", ErrCodeUnknownSetting},
		{"type mismatch", "[buffer]\nembed_size = \"big\"\n", "", ErrCodeTypeMismatch},
		{"negative", "[buffer]\npoll_interval = -1\n", "buffer.poll_interval", ErrCodeOutOfRange},
		{"embed over max", "[buffer]\nembed_size = 64\nmax_capacity = 16\n", "buffer.embed_size", ErrCodeOutOfRange},
		{"method", "[search]\nmethod = \"regex\"\n", "search.method", ErrCodeInvalidEnum},
		{"level", "[logging]\nlevel = \"loud\"\n", "logging.level", ErrCodeInvalidEnum},
		{"format", "[logging]\nformat = \"xml\"\n", "logging.format", ErrCodeInvalidEnum},
		{"license", "[license]\nemail = \"a@b.c\"\nkey = 1\n", "license.key", ErrCodeInvalidLicense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.toml")
			writeFile(t, path, tt.content)

			_, err := Load(WithFile(path), WithoutEnv())
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Code != tt.code {
				t.Errorf("Code = %v, want %v", verr.Code, tt.code)
			}
			if tt.path != "" && !strings.HasPrefix(verr.Path, tt.path) {
				t.Errorf("Path = %q, want %q", verr.Path, tt.path)
			}
		})
	}
}

func TestBufferOptions(t *testing.T) {
	if err := gate.Init(gate.Sign("", "", "test@example.com")); err != nil {
		t.Fatal(err)
	}
	defer gate.Uninit()

	cfg := Default()
	cfg.Buffer.EmbedSize = 16
	cfg.Buffer.MaxCapacity = 32

	b, err := buffer.New(cfg.BufferOptions()...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer b.Destroy()

	if b.EmbedSize() != 16 {
		t.Errorf("EmbedSize() = %d, want 16", b.EmbedSize())
	}
	if err := b.Reserve(64); err == nil {
		t.Error("expected reserve beyond max_capacity to fail")
	}
}

func TestEncode(t *testing.T) {
	cfg := Default()
	cfg.Buffer.EmbedSize = 24

	for _, f := range []loader.Format{loader.FormatTOML, loader.FormatYAML} {
		data, err := cfg.Encode(f)
		if err != nil {
			t.Fatalf("%v: %v", f, err)
		}
		if !strings.Contains(string(data), "embed_size") || !strings.Contains(string(data), "24") {
			t.Errorf("%v output missing embed_size:\n%s", f, data)
		}
	}
}

func TestWatch(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "c.toml")
	writeFile(t, path, "[buffer]\nembed_size = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []*Config
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, func(c *Config, err error) {
			if err != nil {
				return
			}
			mu.Lock()
			got = append(got, c)
			mu.Unlock()
		}, WithFile(path), WithoutEnv(), WithDebounce(20*time.Millisecond))
	}()

	deadline := time.Now().Add(3 * time.Second)
	for {
		// Rewrite until the watcher, which starts asynchronously, sees a change.
		writeFile(t, path, "[buffer]\nembed_size = 2\n")
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("no reload observed")
		}
	}

	mu.Lock()
	if got[0].Buffer.EmbedSize != 2 {
		t.Errorf("reloaded EmbedSize = %d, want 2", got[0].Buffer.EmbedSize)
	}
	mu.Unlock()

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestWatch_NoFile(t *testing.T) {
	isolate(t)
	err := Watch(context.Background(), func(*Config, error) {})
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
