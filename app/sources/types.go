package sources

import (
	"time"

	"github.com/lysyi3m/raiplaysound-rss/app/feed"
)

const (
	DefaultRefreshInterval = 3600
)

// Source is one root catalog page the server keeps converted.
type Source struct {
	Name     string   // Derived from filename
	URL      string   `yaml:"url"`
	Settings Settings `yaml:"settings"`

	types feed.PageTypeSet
}

type Settings struct {
	Enabled         bool     `yaml:"enabled"`
	Recursive       *bool    `yaml:"recursive"` // nil means follow nested playlists
	Types           []string `yaml:"types"`     // Empty means the command line default
	DateOK          bool     `yaml:"date_ok"`
	RefreshInterval int      `yaml:"refresh_interval"` // Seconds
}

func (s *Settings) GetRefreshInterval() time.Duration {
	if s.RefreshInterval <= 0 {
		return DefaultRefreshInterval * time.Second
	}
	return time.Duration(s.RefreshInterval) * time.Second
}

func (s *Settings) IsRecursive() bool {
	return s.Recursive == nil || *s.Recursive
}

// Options returns the conversion options for this source. fallback supplies
// the page types when the source does not list its own.
func (s *Source) Options(fallback feed.PageTypeSet) feed.Options {
	types := s.types
	if len(types) == 0 {
		types = fallback
	}
	return feed.Options{
		Types:     types,
		DateOK:    s.Settings.DateOK,
		Recursive: s.Settings.IsRecursive(),
	}
}
