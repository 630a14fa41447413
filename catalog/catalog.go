// Package catalog holds the machine archetypes a production graph is built
// from. The default catalog is embedded YAML; alternative catalogs can be
// parsed from any reader.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/prodflow/core"
)

//go:embed recipes.yaml
var defaultData []byte

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultData)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded recipes: %v", err))
	}
	return c
})

// Catalog is an immutable, ordered recipe list.
type Catalog struct {
	recipes []Recipe
	byName  map[string]Recipe
}

// Default returns the embedded catalog.
func Default() *Catalog { return defaultCatalog() }

// Parse decodes and validates YAML catalog data.
func Parse(data []byte) (*Catalog, error) {
	return Load(bytes.NewReader(data))
}

// LoadFile parses the catalog stored at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes and validates a YAML catalog. Unknown fields are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f file
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	recipes := lo.Map(f.Recipes, func(e recipeEntry, _ int) Recipe {
		return Recipe{
			ID:      e.ID,
			Machine: e.Machine,
			Inputs:  toStreams(e.Inputs),
			Outputs: toStreams(e.Outputs),
		}
	})
	if err := validate(recipes); err != nil {
		return nil, err
	}

	return &Catalog{
		recipes: recipes,
		byName:  lo.KeyBy(recipes, func(r Recipe) string { return r.Machine }),
	}, nil
}

// Recipes returns every recipe in catalog order.
func (c *Catalog) Recipes() []Recipe { return slices.Clone(c.recipes) }

// Len returns the number of recipes.
func (c *Catalog) Len() int { return len(c.recipes) }

// Lookup returns the recipe for machine.
func (c *Catalog) Lookup(machine string) (Recipe, error) {
	r, ok := c.byName[machine]
	if !ok {
		return Recipe{}, fmt.Errorf("%w: %q", ErrRecipeNotFound, machine)
	}
	return r, nil
}

// NewNode returns a one-machine recipe node for machine.
func (c *Catalog) NewNode(machine string) (*core.RecipeNode, error) {
	r, err := c.Lookup(machine)
	if err != nil {
		return nil, err
	}
	return r.NewNode(), nil
}

// ByOutput returns the recipes producing material, in catalog order.
func (c *Catalog) ByOutput(material string) []Recipe {
	return lo.Filter(c.recipes, func(r Recipe, _ int) bool { return r.Produces(material) })
}

// ByInput returns the recipes consuming material, in catalog order.
func (c *Catalog) ByInput(material string) []Recipe {
	return lo.Filter(c.recipes, func(r Recipe, _ int) bool { return r.Consumes(material) })
}

// Materials returns every material that appears anywhere in the catalog, sorted.
func (c *Catalog) Materials() []string {
	all := lo.FlatMap(c.recipes, func(r Recipe, _ int) []string {
		return lo.Map(append(slices.Clone(r.Inputs), r.Outputs...), func(s core.Stream, _ int) string {
			return s.Material
		})
	})
	out := lo.Uniq(all)
	slices.Sort(out)

	return out
}

// Products returns every material some recipe outputs, sorted.
func (c *Catalog) Products() []string {
	out := lo.Uniq(lo.FlatMap(c.recipes, func(r Recipe, _ int) []string {
		return lo.Map(r.Outputs, func(s core.Stream, _ int) string { return s.Material })
	}))
	slices.Sort(out)

	return out
}

func toStreams(in []rateEntry) []core.Stream {
	return lo.Map(in, func(e rateEntry, _ int) core.Stream {
		return core.Stream{Material: e.Material, Rate: e.Rate}
	})
}

// validate enforces unique non-empty machine names and IDs, at least one
// output per recipe, unique materials per side, and positive rates.
func validate(recipes []Recipe) error {
	if len(recipes) == 0 {
		return fmt.Errorf("%w: no recipes", ErrInvalidCatalog)
	}
	names := make(map[string]bool, len(recipes))
	ids := make(map[int]bool, len(recipes))
	for _, r := range recipes {
		switch {
		case r.Machine == "":
			return fmt.Errorf("%w: recipe %d has no machine name", ErrInvalidCatalog, r.ID)
		case names[r.Machine]:
			return fmt.Errorf("%w: duplicate machine %q", ErrInvalidCatalog, r.Machine)
		case ids[r.ID]:
			return fmt.Errorf("%w: duplicate id %d", ErrInvalidCatalog, r.ID)
		case len(r.Outputs) == 0:
			return fmt.Errorf("%w: %q has no outputs", ErrInvalidCatalog, r.Machine)
		}
		names[r.Machine], ids[r.ID] = true, true
		for _, side := range [][]core.Stream{r.Inputs, r.Outputs} {
			if dups := lo.FindDuplicatesBy(side, func(s core.Stream) string { return s.Material }); len(dups) > 0 {
				return fmt.Errorf("%w: %q lists %q twice", ErrInvalidCatalog, r.Machine, dups[0].Material)
			}
			for _, s := range side {
				if s.Material == "" || s.Rate <= 0 {
					return fmt.Errorf("%w: %q has invalid stream %+v", ErrInvalidCatalog, r.Machine, s)
				}
			}
		}
	}
	return nil
}
