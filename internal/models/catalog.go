package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Exercise is reference data: an entry in the exercise catalog. The engine
// treats the catalog as an immutable lookup table.
type Exercise struct {
	ID               string   `json:"id" yaml:"id"`
	Name             string   `json:"name" yaml:"name"`
	PrimaryMuscles   []string `json:"primary_muscles" yaml:"primary_muscles"`
	SecondaryMuscles []string `json:"secondary_muscles,omitempty" yaml:"secondary_muscles,omitempty"`
}

// ExerciseCatalog maps exercise IDs to their reference data.
type ExerciseCatalog map[string]Exercise

// MuscleGroups returns the primary and secondary muscle groups for an
// exercise, or nil if the exercise is not in the catalog.
func (c ExerciseCatalog) MuscleGroups(exerciseID string) []string {
	ex, ok := c[exerciseID]
	if !ok {
		return nil
	}
	groups := make([]string, 0, len(ex.PrimaryMuscles)+len(ex.SecondaryMuscles))
	groups = append(groups, ex.PrimaryMuscles...)
	groups = append(groups, ex.SecondaryMuscles...)
	return groups
}

// LoadCatalog reads an exercise catalog from a YAML file.
func LoadCatalog(path string) (ExerciseCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var entries []Exercise
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	catalog := make(ExerciseCatalog, len(entries))
	for _, ex := range entries {
		if ex.ID == "" {
			return nil, fmt.Errorf("catalog entry %q: missing id", ex.Name)
		}
		catalog[ex.ID] = ex
	}
	return catalog, nil
}
