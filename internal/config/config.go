// Package config loads the gtmake TOML file: user tracker abbreviations and
// per-command defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

// OpenKeyword expands to every default tracker, one tier each.
const OpenKeyword = "open"

var (
	ErrReservedAbbreviation = errors.New("abbreviation is reserved")
	ErrEmptyAbbreviation    = errors.New("abbreviation is empty")
)

var DefaultAbbreviations = map[string]string{
	"coppersurfer":      "udp://tracker.coppersurfer.tk:6969/announce",
	"cyberia":           "udp://tracker.cyberia.is:6969/announce",
	"demonii":           "udp://open.demonii.si:1337/announce",
	"desync":            "udp://exodus.desync.com:6969/announce",
	"explodie":          "udp://explodie.org:6969/announce",
	"internetwarriors":  "udp://tracker.internetwarriors.net:1337/announce",
	"itzmx":             "udp://tracker1.itzmx.com:8080/announce",
	"leechers-paradise": "udp://tracker.leechers-paradise.org:6969/announce",
	"openbittorrent":    "udp://tracker.openbittorrent.com:80/announce",
	"opentrackr":        "udp://tracker.opentrackr.org:1337/announce",
	"port443":           "udp://tracker.port443.xyz:6969/announce",
	"rargb":             "udp://9.rarbg.to:2710/announce",
	"stealth":           "udp://open.stealth.si:80/announce",
	"thetracker":        "udp://thetracker.org:80/announce",
	"torrentclub":       "udp://torrentclub.tech:6969/announce",
	"zer0day":           "udp://tracker.zer0day.to:1337/announce",
}

// Options are command defaults. A nil field is unset and leaves the
// command's built-in default alone.
type Options struct {
	CreatedBy    *string `toml:"created-by,omitempty"`
	Comment      *string `toml:"comment,omitempty"`
	Source       *string `toml:"source,omitempty"`
	Private      *bool   `toml:"private,omitempty"`
	MD5          *bool   `toml:"md5,omitempty"`
	PieceSize    *string `toml:"piece-size,omitempty"`
	MaxDepth     *int    `toml:"max-depth,omitempty"`
	ShowFiles    *bool   `toml:"show-files,omitempty"`
	ShowProgress *bool   `toml:"show-progress,omitempty"`
}

// Merge returns o with every field set in other taking its place.
func (o Options) Merge(other Options) Options {
	set := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	setBool := func(dst **bool, src *bool) {
		if src != nil {
			*dst = src
		}
	}

	set(&o.CreatedBy, other.CreatedBy)
	set(&o.Comment, other.Comment)
	set(&o.Source, other.Source)
	set(&o.PieceSize, other.PieceSize)
	setBool(&o.Private, other.Private)
	setBool(&o.MD5, other.MD5)
	setBool(&o.ShowFiles, other.ShowFiles)
	setBool(&o.ShowProgress, other.ShowProgress)
	if other.MaxDepth != nil {
		o.MaxDepth = other.MaxDepth
	}
	return o
}

// Defaults holds options shared by every command plus a table per command.
type Defaults struct {
	Options
	Create *Options `toml:"create,omitempty"`
	Xseed  *Options `toml:"xseed,omitempty"`
	Info   *Options `toml:"info,omitempty"`
}

type Config struct {
	// Trackers maps an abbreviation to a URL or a list of URLs.
	Trackers map[string]any `toml:"trackers"`
	Defaults Defaults       `toml:"defaults"`
}

// DefaultPath is gtmake/gtmake.toml under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gtmake", "gtmake.toml"), nil
}

// Load reads the config at path. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "path", path, "key", key.String())
	}

	if cfg.Trackers == nil {
		cfg.Trackers = map[string]any{}
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories. The file is
// replaced in one step so a failed write leaves the old config in place.
func (c *Config) Save(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	if err = tmp.Chmod(0644); err != nil && !errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save config %s: %w", path, err)
	}
	return nil
}

// OptionsFor returns the [defaults] options overridden by the table of
// command, if any.
func (c *Config) OptionsFor(command string) Options {
	opts := c.Defaults.Options

	var cmd *Options
	switch command {
	case "create":
		cmd = c.Defaults.Create
	case "xseed":
		cmd = c.Defaults.Xseed
	case "info":
		cmd = c.Defaults.Info
	}
	if cmd != nil {
		opts = opts.Merge(*cmd)
	}
	return opts
}

func (c *Config) AddTracker(abbr, url string) error {
	if abbr == "" {
		return ErrEmptyAbbreviation
	}
	if _, ok := DefaultAbbreviations[abbr]; ok || abbr == OpenKeyword {
		return fmt.Errorf("%q: %w", abbr, ErrReservedAbbreviation)
	}

	if c.Trackers == nil {
		c.Trackers = map[string]any{}
	}
	c.Trackers[abbr] = url
	return nil
}

// RemoveTracker deletes user abbreviations and returns the ones that
// existed.
func (c *Config) RemoveTracker(abbrs ...string) []string {
	var removed []string
	for _, abbr := range abbrs {
		if _, ok := c.Trackers[abbr]; ok {
			delete(c.Trackers, abbr)
			removed = append(removed, abbr)
		}
	}
	return removed
}

// Tracker returns the URLs a user abbreviation stands for.
func (c *Config) Tracker(abbr string) ([]string, bool) {
	v, ok := c.Trackers[abbr]
	if !ok {
		return nil, false
	}

	switch v := v.(type) {
	case string:
		return []string{v}, true
	case []string:
		return v, true
	case []any:
		urls := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				urls = append(urls, s)
			}
		}
		return urls, true
	}

	slog.Warn("ignoring tracker abbreviation", "abbr", abbr, "type", fmt.Sprintf("%T", v))
	return nil, false
}

// Abbreviation is a named tracker entry for listing.
type Abbreviation struct {
	Name string
	URLs []string
}

func (c *Config) UserAbbreviations() []Abbreviation {
	var out []Abbreviation
	for _, name := range slices.Sorted(maps.Keys(c.Trackers)) {
		if urls, ok := c.Tracker(name); ok {
			out = append(out, Abbreviation{Name: name, URLs: urls})
		}
	}
	return out
}

func DefaultAbbreviationList() []Abbreviation {
	out := make([]Abbreviation, 0, len(DefaultAbbreviations))
	for _, name := range slices.Sorted(maps.Keys(DefaultAbbreviations)) {
		out = append(out, Abbreviation{Name: name, URLs: []string{DefaultAbbreviations[name]}})
	}
	return out
}
