package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegistry = `
manuals:
  - path: metos_coffee.pdf
    equipment_type: Coffee_Maker
    equipment_brand: Metos
    title: Metos Coffee Manual
    tier: 1
  - path: pitco_fryer.pdf
    equipment_type: Fryer
    equipment_brand: Pitco
    equipment_model: SG14
    title: Pitco Fryer Manual
    tier: 2
    language: fi
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("parses manuals with defaults", func(t *testing.T) {
		path := writeRegistry(t, sampleRegistry)

		reg, err := Load(path)

		require.NoError(t, err)
		require.Len(t, reg.Manuals, 2)

		first := reg.Manuals[0]
		assert.Equal(t, filepath.Join(filepath.Dir(path), "metos_coffee.pdf"), first.Path)
		assert.Equal(t, "en", first.Language, "language should default to en")
		assert.Equal(t, 1, first.Tier)

		second := reg.Manuals[1]
		assert.Equal(t, "fi", second.Language)
		assert.Equal(t, "SG14", second.EquipmentModel)
	})

	t.Run("empty registry is rejected", func(t *testing.T) {
		path := writeRegistry(t, "manuals: []\n")

		_, err := Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no manuals")
	})

	t.Run("manual without title is rejected", func(t *testing.T) {
		path := writeRegistry(t, "manuals:\n  - path: x.pdf\n")

		_, err := Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no title")
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := Load("/nonexistent/registry.yaml")
		require.Error(t, err)
	})
}
