package feed

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultAuthor     = "RaiPlaySound"
	defaultLanguage   = "it-it"
	defaultOwnerEmail = "timedum@gmail.com"
	defaultGUIDPrefix = "timendum-raiplaysound-"
)

// Publisher holds the constants stamped on every generated feed.
type Publisher struct {
	Author     string `yaml:"author"`
	Language   string `yaml:"language"`
	OwnerEmail string `yaml:"owner_email"`
	GUIDPrefix string `yaml:"guid_prefix"`
}

func DefaultPublisher() Publisher {
	return Publisher{
		Author:     defaultAuthor,
		Language:   defaultLanguage,
		OwnerEmail: defaultOwnerEmail,
		GUIDPrefix: defaultGUIDPrefix,
	}
}

// LoadPublisher applies the non-blank values of a YAML file on top of the
// defaults. An empty path yields the defaults.
func LoadPublisher(path string) (Publisher, error) {
	publisher := DefaultPublisher()
	if strings.TrimSpace(path) == "" {
		return publisher, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Publisher{}, fmt.Errorf("failed to read publisher config: %w", err)
	}

	var override Publisher
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Publisher{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if value := strings.TrimSpace(override.Author); value != "" {
		publisher.Author = value
	}
	if value := strings.TrimSpace(override.Language); value != "" {
		publisher.Language = value
	}
	if value := strings.TrimSpace(override.OwnerEmail); value != "" {
		publisher.OwnerEmail = value
	}
	if value := strings.TrimSpace(override.GUIDPrefix); value != "" {
		publisher.GUIDPrefix = value
	}

	return publisher, nil
}
