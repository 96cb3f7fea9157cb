package config

import (
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
)

// Shuffler reorders urls in place.
type Shuffler func(urls []string)

// Resolver turns tracker arguments into announce tiers. It is built once per
// invocation; the order of the open trackers is fixed when it is created.
type Resolver struct {
	cfg  *Config
	open []string
}

// NewResolver returns a Resolver over the defaults and cfg's user entries. A
// nil shuffle uses math/rand/v2.
func NewResolver(cfg *Config, shuffle Shuffler) *Resolver {
	if shuffle == nil {
		shuffle = func(urls []string) {
			rand.Shuffle(len(urls), func(i, j int) { urls[i], urls[j] = urls[j], urls[i] })
		}
	}

	open := slices.Collect(maps.Values(DefaultAbbreviations))
	slices.Sort(open)
	shuffle(open)

	if cfg == nil {
		cfg = &Config{}
	}
	return &Resolver{cfg: cfg, open: open}
}

// Lookup expands one abbreviation. Default abbreviations win over user ones.
func (r *Resolver) Lookup(name string) ([]string, bool) {
	if url, ok := DefaultAbbreviations[name]; ok {
		return []string{url}, true
	}
	return r.cfg.Tracker(name)
}

// Resolve treats each argument as one tier whose members are separated by
// '^'. Members are expanded as abbreviations or kept as URLs. The keyword
// open adds one tier per default tracker ahead of the tier it appears in.
func (r *Resolver) Resolve(args []string) [][]string {
	var tiers [][]string

	for _, arg := range args {
		var tier []string
		for _, member := range strings.Split(arg, "^") {
			member = strings.TrimSpace(member)
			switch {
			case member == "":
			case member == OpenKeyword:
				for _, url := range r.open {
					tiers = append(tiers, []string{url})
				}
			default:
				if urls, ok := r.Lookup(member); ok {
					tier = append(tier, urls...)
				} else {
					tier = append(tier, member)
				}
			}
		}
		if len(tier) > 0 {
			tiers = append(tiers, tier)
		}
	}

	return tiers
}
