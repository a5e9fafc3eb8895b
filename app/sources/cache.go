package sources

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/raiplaysound-rss/app/feed"
)

type Cache struct {
	sourcesDir string
	cache      map[string]*Source
	mu         sync.RWMutex
}

func NewCache(sourcesDir string) *Cache {
	return &Cache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*Source),
	}
}

func (c *Cache) Run() error {
	if _, err := os.Stat(c.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yml")

		source, err := c.LoadSource(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source loaded", "source", name, "url", source.URL, "enabled", source.Settings.Enabled, "refresh_interval", source.Settings.RefreshInterval)
	}

	return nil
}

// LoadSource reads, validates and caches sources/<name>.yml, replacing any
// cached copy.
func (c *Cache) LoadSource(name string) (*Source, error) {
	sourceFile := c.getSourceFilePath(name)
	source, err := c.parseSource(sourceFile)
	if err != nil {
		return nil, err
	}

	source.Name = name

	if err := c.validateSource(source); err != nil {
		return nil, fmt.Errorf("invalid source %s: %w", sourceFile, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[source.Name] = source

	return source, nil
}

func (c *Cache) GetSource(name string) (*Source, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	source, ok := c.cache[name]
	if !ok {
		return nil, fmt.Errorf("source with name '%s' not found", name)
	}
	return source, nil
}

// GetSourceByFeed finds the source whose page is written as the named feed.
func (c *Cache) GetSourceByFeed(feedName string) (*Source, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, source := range c.cache {
		if feed.NameFromURL(source.URL) == feedName {
			return source, true
		}
	}
	return nil, false
}

// GetSources returns the cached sources sorted by name.
func (c *Cache) GetSources() []*Source {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sources := make([]*Source, 0, len(c.cache))
	for _, source := range c.cache {
		sources = append(sources, source)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources
}

func (c *Cache) GetEnabledSources() []*Source {
	var enabled []*Source
	for _, source := range c.GetSources() {
		if source.Settings.Enabled {
			enabled = append(enabled, source)
		}
	}
	return enabled
}

func (c *Cache) GetSourceCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *Cache) parseSource(sourceFile string) (*Source, error) {
	data, err := os.ReadFile(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var source Source
	if err := yaml.Unmarshal(data, &source); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if source.Settings.RefreshInterval == 0 {
		source.Settings.RefreshInterval = DefaultRefreshInterval
	}

	return &source, nil
}

func (c *Cache) validateSource(source *Source) error {
	if source == nil {
		return fmt.Errorf("source is nil")
	}

	if source.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if source.URL == "" {
		return fmt.Errorf("source URL is required")
	}

	parsed, err := url.Parse(source.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("source URL must be absolute: %s", source.URL)
	}
	if feed.NameFromURL(source.URL) == "" {
		return fmt.Errorf("source URL has no path segment to name the feed: %s", source.URL)
	}

	if source.Settings.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval must be non-negative")
	}

	if len(source.Settings.Types) > 0 {
		types, err := feed.ParsePageTypes(source.Settings.Types)
		if err != nil {
			return fmt.Errorf("invalid types: %w", err)
		}
		source.types = types
	}

	return nil
}

func (c *Cache) getSourceFilePath(name string) string {
	return filepath.Join(c.sourcesDir, name+".yml")
}
