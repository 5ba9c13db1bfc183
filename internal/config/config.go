// Package config loads litedocs settings from a YAML file.
//
// The file is checked against an embedded CUE schema before it is decoded,
// so unknown keys and out-of-range values are rejected with the schema's
// own messages. Keys missing from the file keep their Default values.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/lmittmann/tint"
	"gopkg.in/yaml.v3"

	"github.com/roach88/litedocs/internal/extjson"
)

//go:embed schema.cue
var schemaCUE string

// ErrInvalidConfig is returned when a config does not satisfy the schema.
var ErrInvalidConfig = errors.New("invalid config")

// Output styles.
const (
	StyleFriendly = "friendly"
	StyleJSON     = "json"
)

// Config is the full set of settings read from a config file.
type Config struct {
	Database string       `yaml:"database"`
	Logger   LoggerConfig `yaml:"logger"`
	Query    QueryConfig  `yaml:"query"`
	Output   OutputConfig `yaml:"output"`
}

// LoggerConfig selects the log level ("debug" through "error") and the
// slog handler type; see Config.Logger.
type LoggerConfig struct {
	Level string `yaml:"level"`
	Type  string `yaml:"type"`
}

// QueryConfig holds query defaults. PageSize is the number of documents
// per page when --page-size is not given.
type QueryConfig struct {
	PageSize int `yaml:"page_size"`
}

// OutputConfig controls how documents are printed.
type OutputConfig struct {
	Style  string `yaml:"style"`
	Indent bool   `yaml:"indent"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		Database: "litedocs.db",
		Logger:   LoggerConfig{Level: "warn", Type: "text"},
		Query:    QueryConfig{PageSize: 20},
		Output:   OutputConfig{Style: StyleFriendly, Indent: true},
	}
}

// Load reads and validates the config file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML config text and decodes it over Default.
func Parse(data []byte) (Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := validate(raw); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate checks c against the schema. Use it after overriding fields
// from flags.
func (c Config) Validate() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return validate(raw)
}

func validate(raw any) error {
	cctx := cuecontext.New()
	schema := cctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(cctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, cueerrors.Details(err, nil))
	}
	return nil
}

// Logger builds the slog logger described by c.Logger, writing to w.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	switch c.Logger.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", c.Logger.Level)
	}

	var handler slog.Handler
	switch c.Logger.Type {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "colored-text":
		handler = tint.NewHandler(w, &tint.Options{Level: level})
	default:
		return nil, fmt.Errorf("invalid log type: %s", c.Logger.Type)
	}
	return slog.New(handler), nil
}

// Format returns the rendering format selected by c.Output.
func (c Config) Format() extjson.Format {
	f := extjson.Friendly
	if c.Output.Style == StyleJSON {
		f = extjson.JSONCompatible
	}
	if c.Output.Indent {
		f |= extjson.Indent
	}
	return f
}
