// Package seed holds the default position catalog loaded into an empty database.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"alfredoptarigan/talent-allocator/internal/models"
)

//go:embed positions.yaml
var defaultCatalog []byte

type catalog struct {
	Positions []position `yaml:"positions"`
}

type position struct {
	Name           string   `yaml:"name"`
	Description    string   `yaml:"description"`
	RequiredSkills []string `yaml:"required_skills"`
	NiceToHave     []string `yaml:"nice_to_have"`
}

// Default returns the embedded catalog.
func Default() ([]models.CreatePositionRequest, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path returns the embedded catalog.
func Load(path string) ([]models.CreatePositionRequest, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]models.CreatePositionRequest, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}

	seen := make(map[string]bool, len(c.Positions))
	defs := make([]models.CreatePositionRequest, 0, len(c.Positions))
	for i, p := range c.Positions {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, fmt.Errorf("seed position %d has no name", i+1)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("seed position %q is listed twice", name)
		}
		seen[key] = true

		defs = append(defs, models.CreatePositionRequest{
			Name:           name,
			Description:    strings.TrimSpace(p.Description),
			RequiredSkills: p.RequiredSkills,
			NiceToHave:     p.NiceToHave,
		})
	}

	return defs, nil
}
