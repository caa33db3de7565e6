package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"manual-assistant/internal/domain"
)

type registryFile struct {
	Manuals []domain.ManualDefinition `yaml:"manuals"`
}

// Load reads the manual registry from a YAML file. Relative manual
// paths are resolved against the registry file's directory. Missing
// language defaults to "en", missing tier to 1.
func Load(path string) (*domain.ManualRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry %s: %w", path, err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	if len(file.Manuals) == 0 {
		return nil, fmt.Errorf("registry %s lists no manuals", path)
	}

	baseDir := filepath.Dir(path)
	for i := range file.Manuals {
		m := &file.Manuals[i]
		if m.Path == "" {
			return nil, fmt.Errorf("registry %s: manual %d has no path", path, i)
		}
		if m.Title == "" {
			return nil, fmt.Errorf("registry %s: manual %s has no title", path, m.Path)
		}
		if !filepath.IsAbs(m.Path) {
			m.Path = filepath.Join(baseDir, m.Path)
		}
		if m.Language == "" {
			m.Language = "en"
		}
		if m.Tier == 0 {
			m.Tier = 1
		}
	}

	return &domain.ManualRegistry{Manuals: file.Manuals}, nil
}
