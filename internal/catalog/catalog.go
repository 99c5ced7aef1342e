// Package catalog holds the storefront content: products with their option
// groups, the specifications table, gallery images, FAQ entries and feature
// highlights. Content is trusted and static; it is loaded from a YAML
// fixture, seeded into SQLite and read back through Repository.
package catalog

import (
	"errors"

	"github.com/samber/lo"

	"github.com/Simplici0/macclone/internal/pricing"
)

const generalCategory = "General"

// ErrNotFound is returned when a slug matches no product.
var ErrNotFound = errors.New("catalog entry not found")

// Product is a purchasable item and its configurable option groups.
type Product struct {
	Slug         string          `json:"slug" yaml:"slug"`
	Name         string          `json:"name" yaml:"name"`
	Headline     string          `json:"headline,omitempty" yaml:"headline"`
	Description  string          `json:"description,omitempty" yaml:"description"`
	BasePrice    float64         `json:"basePrice" yaml:"basePrice"`
	ImageURL     string          `json:"imageUrl,omitempty" yaml:"imageUrl"`
	Link         string          `json:"link,omitempty" yaml:"link"`
	OptionGroups pricing.Catalog `json:"optionGroups" yaml:"optionGroups"`
}

// Spec is one row of the specifications table.
type Spec struct {
	ID       string `json:"id" yaml:"id"`
	Category string `json:"category,omitempty" yaml:"category"`
	Name     string `json:"name" yaml:"name"`
	Value    string `json:"value" yaml:"value"`
	Key      bool   `json:"key,omitempty" yaml:"key"`
}

// SpecGroup is a category heading with its rows, in table order.
type SpecGroup struct {
	Category string `json:"category"`
	Specs    []Spec `json:"specs"`
}

// GalleryImage is one picture in the product gallery.
type GalleryImage struct {
	ID  string `json:"id" yaml:"id"`
	Src string `json:"src" yaml:"src"`
	Alt string `json:"alt" yaml:"alt"`
}

// FAQ is a support question with its answer.
type FAQ struct {
	ID       string `json:"id" yaml:"id"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

// Feature is a highlight shown on the product overview.
type Feature struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// GroupSpecs groups rows by category in order of first appearance.
// Rows without a category land in "General".
func GroupSpecs(specs []Spec) []SpecGroup {
	categoryOf := func(s Spec) string {
		if s.Category == "" {
			return generalCategory
		}
		return s.Category
	}

	categories := lo.Uniq(lo.Map(specs, func(s Spec, _ int) string { return categoryOf(s) }))
	return lo.Map(categories, func(c string, _ int) SpecGroup {
		return SpecGroup{
			Category: c,
			Specs:    lo.Filter(specs, func(s Spec, _ int) bool { return categoryOf(s) == c }),
		}
	})
}

// SelectImage returns the gallery image with the given id, or the first
// image when id is empty or unknown.
func SelectImage(images []GalleryImage, id string) (GalleryImage, bool) {
	if len(images) == 0 {
		return GalleryImage{}, false
	}
	if img, ok := lo.Find(images, func(i GalleryImage) bool { return i.ID == id }); ok {
		return img, true
	}
	return images[0], true
}
