package catalog

import (
	"errors"

	"github.com/katalvlaran/prodflow/core"
)

// Sentinel errors for catalog parsing and lookups.
var (
	// ErrRecipeNotFound is returned by Lookup for an unknown machine name.
	ErrRecipeNotFound = errors.New("catalog: recipe not found")

	// ErrInvalidCatalog is returned when catalog data fails validation.
	ErrInvalidCatalog = errors.New("catalog: invalid catalog")
)

// Recipe is one machine archetype with its per-machine rates.
type Recipe struct {
	ID      int           `json:"id"`
	Machine string        `json:"machine"`
	Inputs  []core.Stream `json:"inputs"`
	Outputs []core.Stream `json:"outputs"`
}

// NewNode returns a fresh recipe node at one machine.
func (r Recipe) NewNode() *core.RecipeNode {
	return core.NewRecipeNode(r.Machine, r.Inputs, r.Outputs)
}

// Produces reports whether r has material among its outputs.
func (r Recipe) Produces(material string) bool { return hasMaterial(r.Outputs, material) }

// Consumes reports whether r has material among its inputs.
func (r Recipe) Consumes(material string) bool { return hasMaterial(r.Inputs, material) }

// file is the on-disk YAML shape.
type file struct {
	Recipes []recipeEntry `yaml:"recipes"`
}

type recipeEntry struct {
	ID      int         `yaml:"id"`
	Machine string      `yaml:"machine"`
	Inputs  []rateEntry `yaml:"inputs"`
	Outputs []rateEntry `yaml:"outputs"`
}

type rateEntry struct {
	Material string  `yaml:"material"`
	Rate     float64 `yaml:"rate"`
}

func hasMaterial(list []core.Stream, material string) bool {
	for _, s := range list {
		if s.Material == material {
			return true
		}
	}
	return false
}
