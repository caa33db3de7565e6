package domain

import "os"

// ManualDefinition describes a single registered equipment manual.
type ManualDefinition struct {
	Path           string `yaml:"path"`
	EquipmentType  string `yaml:"equipment_type"`
	EquipmentBrand string `yaml:"equipment_brand"`
	EquipmentModel string `yaml:"equipment_model"`
	ManualType     string `yaml:"manual_type"`
	Title          string `yaml:"title"`
	Language       string `yaml:"language"`
	Tier           int    `yaml:"tier"`
}

// Exists reports whether the manual file is present on disk.
func (m ManualDefinition) Exists() bool {
	_, err := os.Stat(m.Path)
	return err == nil
}

// ManualRegistry holds every manual the assistant knows about,
// regardless of whether its file is currently available.
type ManualRegistry struct {
	Manuals []ManualDefinition
}

// Available returns the manuals whose files exist on disk.
func (r *ManualRegistry) Available() []ManualDefinition {
	var out []ManualDefinition
	for _, m := range r.Manuals {
		if m.Exists() {
			out = append(out, m)
		}
	}
	return out
}

// Missing returns the manuals whose files are absent.
func (r *ManualRegistry) Missing() []ManualDefinition {
	var out []ManualDefinition
	for _, m := range r.Manuals {
		if !m.Exists() {
			out = append(out, m)
		}
	}
	return out
}

// ByEquipmentType returns the manuals registered for the given type.
func (r *ManualRegistry) ByEquipmentType(equipmentType string) []ManualDefinition {
	var out []ManualDefinition
	for _, m := range r.Manuals {
		if m.EquipmentType == equipmentType {
			out = append(out, m)
		}
	}
	return out
}

// ByTier returns the manuals registered at the given priority tier.
func (r *ManualRegistry) ByTier(tier int) []ManualDefinition {
	var out []ManualDefinition
	for _, m := range r.Manuals {
		if m.Tier == tier {
			out = append(out, m)
		}
	}
	return out
}

// RegistryValidation summarizes manual availability for setup reporting.
type RegistryValidation struct {
	TotalRegistered int
	Available       []ManualDefinition
	Missing         []ManualDefinition
}

// Validate checks every registered manual against the filesystem.
func (r *ManualRegistry) Validate() RegistryValidation {
	return RegistryValidation{
		TotalRegistered: len(r.Manuals),
		Available:       r.Available(),
		Missing:         r.Missing(),
	}
}
