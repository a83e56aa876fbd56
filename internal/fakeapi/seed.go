package fakeapi

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Category mirrors the backend's category row.
type Category struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Product mirrors the backend's product row.
type Product struct {
	ID          int64   `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Price       float64 `json:"price" yaml:"price"`
	ImageURL    string  `json:"image_url" yaml:"image_url"`
	CategoryID  int64   `json:"category_id" yaml:"category_id"`
}

// Seed is the initial catalog.
type Seed struct {
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
}

// ParseSeed decodes a YAML catalog.
func ParseSeed(raw []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	seen := make(map[int64]bool, len(seed.Products))
	for _, p := range seed.Products {
		if p.ID <= 0 {
			return Seed{}, fmt.Errorf("%w: product %q has no id", ErrInvalidSeed, p.Name)
		}
		if seen[p.ID] {
			return Seed{}, fmt.Errorf("%w: duplicate product id %d", ErrInvalidSeed, p.ID)
		}
		seen[p.ID] = true
	}
	return seed, nil
}
