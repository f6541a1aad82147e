package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Loader reads a Config from a file and the environment.
type Loader struct {
	path     string
	environ  func() []string
	readFile func(string) ([]byte, error)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithEnviron replaces os.Environ as the source of overrides.
func WithEnviron(fn func() []string) LoaderOption {
	return func(l *Loader) { l.environ = fn }
}

// WithReadFile replaces os.ReadFile.
func WithReadFile(fn func(string) ([]byte, error)) LoaderOption {
	return func(l *Loader) { l.readFile = fn }
}

// NewLoader creates a loader for the file at path.
func NewLoader(path string, opts ...LoaderOption) *Loader {
	l := &Loader{
		path:     path,
		environ:  os.Environ,
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the config file path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads defaults, then the file, then the environment, and validates
// the result. A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	data, err := l.readFile(l.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", l.path, err)
	default:
		if err := decode(cfg, l.path, data, true); err != nil {
			return nil, err
		}
	}

	if env := envOverlay(l.environ()); len(env) > 0 {
		data, err := toml.Marshal(env)
		if err != nil {
			return nil, fmt.Errorf("encoding environment overrides: %w", err)
		}
		if err := decode(cfg, "environment", data, false); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the config at path with the process environment.
func Load(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Parse decodes TOML data over the defaults without the environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(cfg, "<input>", data, true); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unmarshals data over cfg. Strict decoding rejects unknown keys.
func decode(cfg *Config, source string, data []byte, strict bool) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}
	err := dec.Decode(cfg)
	if err == nil {
		return nil
	}

	pe := &ParseError{Path: source, Message: err.Error(), Err: err}
	var derr *toml.DecodeError
	var serr *toml.StrictMissingError
	switch {
	case errors.As(err, &derr):
		pe.Line, pe.Column = derr.Position()
	case errors.As(err, &serr) && len(serr.Errors) > 0:
		pe.Line, pe.Column = serr.Errors[0].Position()
		pe.Message = fmt.Sprintf("unknown key %s", joinKey(serr.Errors[0].Key()))
	}
	return pe
}

func joinKey(k []string) string {
	var b bytes.Buffer
	for i, part := range k {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
