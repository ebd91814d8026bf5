package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileName is the compose file name written into every work directory.
const FileName = "docker-compose.yml"

// file models the subset of a compose file the client inspects.
type file struct {
	Services map[string]service `yaml:"services"`
}

type service struct {
	Image string   `yaml:"image"`
	Ports []string `yaml:"ports"`
}

// DefinedServices parses the project's compose file and returns the
// declared service names in sorted order. The verifier compares these
// against the services compose actually reports as running.
func (c *Client) DefinedServices() ([]string, error) {
	path := filepath.Join(c.ProjectDir, FileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compose file %q: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode compose file %q: %w", path, err)
	}
	if len(f.Services) == 0 {
		return nil, fmt.Errorf("compose file %q declares no services", path)
	}

	names := make([]string, 0, len(f.Services))
	for name := range f.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
