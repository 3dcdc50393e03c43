package config

import (
	_ "embed"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Category is one entry of the static category table.
type Category struct {
	Name        string         `yaml:"name" json:"name"`
	Subreddits  []string       `yaml:"subreddits" json:"subreddits"`
	Keywords    []string       `yaml:"keywords" json:"keywords"`
	TypicalCost int            `yaml:"typical_cost" json:"typical_cost"`
	Complexity  string         `yaml:"complexity" json:"complexity"`
	Backgrounds map[string]int `yaml:"backgrounds" json:"backgrounds"`
}

// Catalog is the read-only category table shared by the fetch stage and the
// profile matcher. Accessors hand out copies.
type Catalog struct {
	order      []string
	byName     map[string]Category
	defaultKey string
}

type catalogFile struct {
	Default    string     `yaml:"default"`
	Categories []Category `yaml:"categories"`
}

// DefaultCatalog parses the embedded table; it panics only if the binary was
// built with a broken catalog.yaml.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(embeddedCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// ParseCatalog decodes and validates a YAML category table.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: parse catalog: %v", ErrInvalidConfig, err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("%w: catalog has no categories", ErrInvalidConfig)
	}

	c := &Catalog{
		byName:     make(map[string]Category, len(file.Categories)),
		defaultKey: strings.ToLower(strings.TrimSpace(file.Default)),
	}
	for _, cat := range file.Categories {
		key := strings.ToLower(strings.TrimSpace(cat.Name))
		if key == "" {
			return nil, fmt.Errorf("%w: catalog category without name", ErrInvalidConfig)
		}
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate catalog category %s", ErrInvalidConfig, key)
		}
		if len(cat.Subreddits) == 0 || len(cat.Keywords) == 0 {
			return nil, fmt.Errorf("%w: category %s needs subreddits and keywords", ErrInvalidConfig, key)
		}
		cat.Name = key
		c.byName[key] = cat
		c.order = append(c.order, key)
	}
	if c.defaultKey == "" {
		c.defaultKey = "general"
	}
	if _, ok := c.byName[c.defaultKey]; !ok {
		return nil, fmt.Errorf("%w: default category %s is not defined", ErrInvalidConfig, c.defaultKey)
	}
	return c, nil
}

// Names returns category names in table order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.order)
}

// DefaultName is the fallback category for unknown input.
func (c *Catalog) DefaultName() string {
	return c.defaultKey
}

// Resolve maps any category string to a known one, falling back to the default.
func (c *Catalog) Resolve(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := c.byName[key]; ok {
		return key
	}
	return c.defaultKey
}

// Lookup returns the category for name, or the default category.
func (c *Catalog) Lookup(name string) Category {
	return cloneCategory(c.byName[c.Resolve(name)])
}

// Known reports whether name is in the table.
func (c *Catalog) Known(name string) bool {
	_, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func cloneCategory(cat Category) Category {
	cat.Subreddits = slices.Clone(cat.Subreddits)
	cat.Keywords = slices.Clone(cat.Keywords)
	cat.Backgrounds = maps.Clone(cat.Backgrounds)
	return cat
}
