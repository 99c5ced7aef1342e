package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/storefront.yaml
var storefrontYAML []byte

// Fixture is the full storefront content set.
type Fixture struct {
	Products []Product      `yaml:"products"`
	Specs    []Spec         `yaml:"specs"`
	Gallery  []GalleryImage `yaml:"gallery"`
	FAQs     []FAQ          `yaml:"faqs"`
	Features []Feature      `yaml:"features"`
}

// DefaultFixture returns the content bundled with the binary.
func DefaultFixture() (Fixture, error) {
	return LoadFixture(bytes.NewReader(storefrontYAML))
}

// LoadFixture decodes and validates a YAML fixture. Unknown keys are rejected.
func LoadFixture(r io.Reader) (Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("decode catalog fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return Fixture{}, err
	}
	return f, nil
}

// Validate checks product slugs and each product's option catalog.
func (f Fixture) Validate() error {
	seen := make(map[string]struct{}, len(f.Products))
	for _, p := range f.Products {
		if p.Slug == "" {
			return fmt.Errorf("product %q has no slug", p.Name)
		}
		if _, dup := seen[p.Slug]; dup {
			return fmt.Errorf("duplicate product slug %q", p.Slug)
		}
		seen[p.Slug] = struct{}{}

		if p.BasePrice < 0 {
			return fmt.Errorf("product %q has a negative base price", p.Slug)
		}
		if err := p.OptionGroups.Validate(); err != nil {
			return fmt.Errorf("product %q: %w", p.Slug, err)
		}
	}
	return nil
}
