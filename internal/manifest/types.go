package manifest

import (
	"fmt"

	"github.com/JdotSiv/homebrew/internal/domain"
)

// Config represents a complete resource manifest
type Config struct {
	Resources []Entry `yaml:"resources" json:"resources"`
	Options   Options `yaml:"options" json:"options"`
}

// Entry declares a single resource to fetch
type Entry struct {
	Name     string            `yaml:"name" json:"name"`
	URL      string            `yaml:"url" json:"url"`
	Version  string            `yaml:"version,omitempty" json:"version,omitempty"`
	Strategy string            `yaml:"strategy,omitempty" json:"strategy,omitempty"`
	Mirrors  []string          `yaml:"mirrors,omitempty" json:"mirrors,omitempty"`
	Specs    map[string]string `yaml:"specs,omitempty" json:"specs,omitempty"`
}

// Options represents global manifest options
type Options struct {
	ContinueOnError bool `yaml:"continue_on_error" json:"continue_on_error"`
}

// Resource converts the entry into a resource descriptor.
func (e *Entry) Resource() *domain.Resource {
	return &domain.Resource{
		Name:    e.Name,
		URL:     e.URL,
		Version: e.Version,
		Specs:   e.Specs,
		Mirrors: e.Mirrors,
	}
}

// Validate validates the manifest configuration
func (c *Config) Validate() error {
	if len(c.Resources) == 0 {
		return ErrNoResources
	}
	for i, entry := range c.Resources {
		if entry.Name == "" {
			return fmt.Errorf("resource %d: %w", i, ErrEmptyName)
		}
		if entry.URL == "" {
			return fmt.Errorf("resource %d (%s): %w", i, entry.Name, ErrEmptyURL)
		}
	}
	return nil
}
