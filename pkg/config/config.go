// Package config loads schemagraph settings.
//
// Values are layered, later sources winning:
//
//  1. built-in defaults
//  2. a TOML file (schemagraph.toml in the working directory, or --config)
//  3. SCHEMAGRAPH_* environment variables
//  4. command-line flags that were set explicitly
//
// The result is a plain [Config] value that the CLI hands to the pipeline;
// nothing below the CLI reads global settings.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/schemagraph/pkg/errors"
	"github.com/matzehuels/schemagraph/pkg/layout"
)

const (
	// DefaultFile is read from the working directory when present.
	DefaultFile = "schemagraph.toml"

	// EnvPrefix marks environment overrides, e.g. SCHEMAGRAPH_THEME=dark.
	EnvPrefix = "SCHEMAGRAPH_"

	// DefaultOutput is the base name of written artifacts.
	DefaultOutput = "api_graph"
)

// Formats lists every artifact format the pipeline can produce.
var Formats = []string{"svg", "html", "json", "dot", "png", "pdf"}

// Config is the resolved configuration of one CLI invocation.
type Config struct {
	Output    string         `koanf:"output" validate:"required"`
	OutputDir string         `koanf:"output_dir"`
	Viewer    bool           `koanf:"viewer"`
	Formats   []string       `koanf:"formats" validate:"dive,oneof=svg html json dot png pdf"`
	Theme     string         `koanf:"theme" validate:"oneof=light dark"`
	Engine    string         `koanf:"engine" validate:"oneof=builtin graphviz"`
	RootID    string         `koanf:"root_id" validate:"required"`
	Scale     float64        `koanf:"scale" validate:"gt=0,lte=16"`
	Jobs      int            `koanf:"jobs" validate:"gte=1,lte=64"`
	Verbose   bool           `koanf:"verbose"`
	Cache     CacheConfig    `koanf:"cache"`
	Serve     ServeConfig    `koanf:"serve"`
	Layout    layout.Options `koanf:"layout"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend  string        `koanf:"backend" validate:"oneof=file redis none"`
	Dir      string        `koanf:"dir"`
	RedisURL string        `koanf:"redis_url" validate:"required_if=Backend redis"`
	TTL      time.Duration `koanf:"ttl" validate:"gte=0"`
}

// ServeConfig configures the viewer HTTP server.
type ServeConfig struct {
	Addr         string        `koanf:"addr" validate:"required"`
	PollInterval time.Duration `koanf:"poll_interval" validate:"gte=0"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Output:  DefaultOutput,
		Formats: []string{"svg"},
		Theme:   "light",
		Engine:  "builtin",
		RootID:  "main-svg",
		Scale:   1,
		Jobs:    4,
		Cache: CacheConfig{
			Backend: "file",
			TTL:     7 * 24 * time.Hour,
		},
		Serve: ServeConfig{
			Addr:         "127.0.0.1:8080",
			PollInterval: 2 * time.Second,
		},
		Layout: layout.DefaultOptions(),
	}
}

func defaults() map[string]any {
	d := Default()
	l := d.Layout
	return map[string]any{
		"output":                 d.Output,
		"output_dir":             d.OutputDir,
		"viewer":                 d.Viewer,
		"formats":                d.Formats,
		"theme":                  d.Theme,
		"engine":                 d.Engine,
		"root_id":                d.RootID,
		"scale":                  d.Scale,
		"jobs":                   d.Jobs,
		"verbose":                d.Verbose,
		"cache.backend":          d.Cache.Backend,
		"cache.dir":              d.Cache.Dir,
		"cache.redis_url":        d.Cache.RedisURL,
		"cache.ttl":              d.Cache.TTL.String(),
		"serve.addr":             d.Serve.Addr,
		"serve.poll_interval":    d.Serve.PollInterval.String(),
		"layout.font_size":       l.FontSize,
		"layout.char_width":      l.CharWidth,
		"layout.header_height":   l.HeaderHeight,
		"layout.row_height":      l.RowHeight,
		"layout.padding_x":       l.PaddingX,
		"layout.padding_y":       l.PaddingY,
		"layout.min_width":       l.MinWidth,
		"layout.node_gap":        l.NodeGap,
		"layout.layer_gap":       l.LayerGap,
		"layout.lane_gap":        l.LaneGap,
		"layout.channel_gap":     l.ChannelGap,
		"layout.max_label_chars": l.MaxLabelChars,
	}
}

// flagKeys maps CLI flag names to configuration keys. Flags missing here
// (--watch, --interactive, ...) are command behaviour, not configuration.
var flagKeys = map[string]string{
	"output":        "output",
	"output-dir":    "output_dir",
	"viewer":        "viewer",
	"format":        "formats",
	"theme":         "theme",
	"engine":        "engine",
	"root-id":       "root_id",
	"scale":         "scale",
	"jobs":          "jobs",
	"verbose":       "verbose",
	"cache-backend": "cache.backend",
	"cache-dir":     "cache.dir",
	"redis-url":     "cache.redis_url",
	"addr":          "serve.addr",
}

// Load resolves the configuration from defaults, the config file, the
// environment and fs. fs may be nil. A --config flag on fs names the file to
// read; an explicitly named file must exist, the default one may be absent.
func Load(fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(defaults()), nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load defaults")
	}

	path, explicit := configPath(fs)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
	} else if explicit {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load environment")
	}

	if fs != nil {
		if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, flagValue(fs)), nil); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load flags")
		}
		if noCache, err := fs.GetBool("no-cache"); err == nil && noCache {
			if err := k.Set("cache.backend", "none"); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "disable cache")
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func configPath(fs *pflag.FlagSet) (string, bool) {
	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Changed {
			return f.Value.String(), true
		}
	}
	return DefaultFile, false
}

// envKey turns SCHEMAGRAPH_CACHE_REDIS_URL into cache.redis_url. Only the
// first underscore after a known section name becomes a delimiter, so
// multi-word keys such as output_dir survive.
func envKey(key, value string) (string, any) {
	k := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	for _, section := range []string{"cache", "serve", "layout"} {
		if rest, ok := strings.CutPrefix(k, section+"_"); ok {
			k = section + "." + rest
			break
		}
	}
	if k == "formats" {
		return k, splitList(value)
	}
	return k, value
}

func flagValue(fs *pflag.FlagSet) func(*pflag.Flag) (string, any) {
	return func(f *pflag.Flag) (string, any) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		switch f.Value.Type() {
		case "stringSlice":
			v, _ := fs.GetStringSlice(f.Name)
			return key, v
		case "bool":
			v, _ := fs.GetBool(f.Name)
			return key, v
		case "int":
			v, _ := fs.GetInt(f.Name)
			return key, v
		case "float64":
			v, _ := fs.GetFloat64(f.Name)
			return key, v
		}
		return key, f.Value.String()
	}
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints. Failures carry ErrCodeInvalidConfig and
// name every offending key.
func (c *Config) Validate() error {
	c.normalize()
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !asValidation(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate configuration")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.New(errors.ErrCodeInvalidConfig, "invalid configuration: %s", strings.Join(msgs, "; "))
}

func asValidation(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}

func (c *Config) normalize() {
	for i, f := range c.Formats {
		c.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	c.Theme = strings.ToLower(c.Theme)
	c.Engine = strings.ToLower(c.Engine)
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
}

// Artifacts returns the formats to produce, deduplicated, in the order of
// [Formats]. svg is always included; --viewer adds html.
func (c *Config) Artifacts() []string {
	want := map[string]bool{"svg": true}
	for _, f := range c.Formats {
		want[f] = true
	}
	if c.Viewer {
		want["html"] = true
	}
	var out []string
	for _, f := range Formats {
		if want[f] {
			out = append(out, f)
		}
	}
	return out
}

// HasFormat reports whether f is among the produced artifacts.
func (c *Config) HasFormat(f string) bool {
	return slices.Contains(c.Artifacts(), f)
}

// mapProvider serves an in-memory map to koanf.
type mapProvider map[string]any

func (p mapProvider) Read() (map[string]any, error) {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return unflatten(out), nil
}

func (mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

// unflatten turns dotted keys into nested maps, which is the shape koanf
// expects from a provider.
func unflatten(flat map[string]any) map[string]any {
	out := map[string]any{}
	for key, v := range flat {
		parts := strings.Split(key, ".")
		m := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				m[p] = next
			}
			m = next
		}
		m[parts[len(parts)-1]] = v
	}
	return out
}
