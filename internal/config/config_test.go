package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/litedocs/internal/extjson"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad_FullFile(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "full.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Config{
		Database: "/var/lib/litedocs/app.db",
		Logger:   LoggerConfig{Level: "debug", Type: "json"},
		Query:    QueryConfig{PageSize: 50},
		Output:   OutputConfig{Style: StyleJSON, Indent: false},
	}, cfg)
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("query:\n  page_size: 5\n"))
	require.NoError(t, err)

	want := Default()
	want.Query.PageSize = 5
	assert.Equal(t, want, cfg)
}

func TestParse_Empty(t *testing.T) {
	for _, text := range []string{"", "\n", "# only a comment\n"} {
		cfg, err := Parse([]byte(text))
		require.NoError(t, err, "text %q", text)
		assert.Equal(t, Default(), cfg)
	}
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"unknown key", "colour: red\n", "colour"},
		{"unknown nested key", "logger:\n  file: x.log\n", "file"},
		{"bad level", "logger:\n  level: loud\n", "level"},
		{"bad type", "logger:\n  type: xml\n", "type"},
		{"page size too small", "query:\n  page_size: 0\n", "page_size"},
		{"page size too large", "query:\n  page_size: 10001\n", "page_size"},
		{"page size not int", "query:\n  page_size: ten\n", "page_size"},
		{"bad style", "output:\n  style: shell\n", "style"},
		{"empty database", "database: \"\"\n", "database"},
		{"not a mapping", "- a\n- b\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.text))
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_BadYAML(t *testing.T) {
	_, err := Parse([]byte("logger: [unclosed\n"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_ErrorNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query:\n  page_size: -1\n"), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.True(t, strings.HasPrefix(err.Error(), path+": "), err.Error())
}

func TestValidate_AfterOverride(t *testing.T) {
	cfg := Default()
	cfg.Query.PageSize = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestLogger(t *testing.T) {
	tests := []struct {
		typ   string
		check func(t *testing.T, out string)
	}{
		{"text", func(t *testing.T, out string) {
			assert.Contains(t, out, "level=WARN")
			assert.Contains(t, out, "msg=shown")
		}},
		{"json", func(t *testing.T, out string) {
			assert.Contains(t, out, `"level":"WARN"`)
			assert.Contains(t, out, `"msg":"shown"`)
		}},
		{"colored-text", func(t *testing.T, out string) {
			assert.Contains(t, out, "shown")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			cfg := Default()
			cfg.Logger = LoggerConfig{Level: "warn", Type: tt.typ}

			var buf bytes.Buffer
			log, err := cfg.Logger(&buf)
			require.NoError(t, err)

			log.Info("hidden")
			log.Warn("shown")
			out := buf.String()
			assert.NotContains(t, out, "hidden")
			tt.check(t, out)
		})
	}
}

func TestLogger_Invalid(t *testing.T) {
	cfg := Default()
	cfg.Logger.Level = "loud"
	_, err := cfg.Logger(&bytes.Buffer{})
	assert.Error(t, err)

	cfg = Default()
	cfg.Logger.Type = "xml"
	_, err = cfg.Logger(&bytes.Buffer{})
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		output OutputConfig
		want   extjson.Format
	}{
		{OutputConfig{Style: StyleFriendly, Indent: true}, extjson.Friendly | extjson.Indent},
		{OutputConfig{Style: StyleFriendly}, extjson.Friendly},
		{OutputConfig{Style: StyleJSON, Indent: true}, extjson.JSONCompatible | extjson.Indent},
		{OutputConfig{Style: StyleJSON}, extjson.JSONCompatible},
	}
	for _, tt := range tests {
		cfg := Config{Output: tt.output}
		assert.Equal(t, tt.want, cfg.Format(), "%+v", tt.output)
	}
}
