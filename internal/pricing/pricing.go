package pricing

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// colorGroupID names the group whose chosen image always represents the configuration.
const colorGroupID = "color"

var (
	ErrInvalidCatalog      = errors.New("invalid catalog")
	ErrUnknownGroup        = errors.New("unknown option group")
	ErrUnknownOption       = errors.New("unknown option")
	ErrIncompleteSelection = errors.New("incomplete selection")
)

// OptionChoice is one selectable value inside an option group.
type OptionChoice struct {
	Value         string  `json:"value" yaml:"value"`
	Label         string  `json:"label" yaml:"label"`
	PriceModifier float64 `json:"priceModifier" yaml:"priceModifier"`
	ImageURL      string  `json:"imageUrl,omitempty" yaml:"imageUrl"`
}

// OptionGroup is a set of mutually exclusive choices, e.g. RAM size.
type OptionGroup struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	Options       []OptionChoice `json:"options" yaml:"options"`
	DefaultOption string         `json:"defaultOption,omitempty" yaml:"defaultOption"`
}

// Catalog lists option groups in display order.
type Catalog []OptionGroup

// Selection maps a group id to the chosen option value.
type Selection map[string]string

// Result is the configuration projection shown next to the selector.
type Result struct {
	TotalPrice             float64 `json:"totalPrice"`
	RepresentativeImageURL string  `json:"representativeImageUrl,omitempty"`
}

func (g OptionGroup) option(value string) (OptionChoice, bool) {
	return lo.Find(g.Options, func(o OptionChoice) bool { return o.Value == value })
}

func (g OptionGroup) defaultChoice() OptionChoice {
	if g.DefaultOption != "" {
		if o, ok := g.option(g.DefaultOption); ok {
			return o
		}
	}
	return g.Options[0]
}

func (c Catalog) group(id string) (OptionGroup, bool) {
	return lo.Find(c, func(g OptionGroup) bool { return g.ID == id })
}

// Validate checks the structural invariants a catalog must hold before it is served.
func (c Catalog) Validate() error {
	seenGroups := make(map[string]struct{}, len(c))
	for _, g := range c {
		if g.ID == "" {
			return fmt.Errorf("%w: group without id", ErrInvalidCatalog)
		}
		if _, dup := seenGroups[g.ID]; dup {
			return fmt.Errorf("%w: duplicate group %q", ErrInvalidCatalog, g.ID)
		}
		seenGroups[g.ID] = struct{}{}

		if len(g.Options) == 0 {
			return fmt.Errorf("%w: group %q has no options", ErrInvalidCatalog, g.ID)
		}
		values := lo.Map(g.Options, func(o OptionChoice, _ int) string { return o.Value })
		if dups := lo.FindDuplicates(values); len(dups) > 0 {
			return fmt.Errorf("%w: group %q repeats option %q", ErrInvalidCatalog, g.ID, dups[0])
		}
		if g.DefaultOption != "" && !lo.Contains(values, g.DefaultOption) {
			return fmt.Errorf("%w: group %q default %q is not an option", ErrInvalidCatalog, g.ID, g.DefaultOption)
		}
	}
	return nil
}

// InitializeSelection picks each group's default option, falling back to its first option.
func InitializeSelection(catalog Catalog) (Selection, error) {
	sel := make(Selection, len(catalog))
	for _, g := range catalog {
		if len(g.Options) == 0 {
			return nil, fmt.Errorf("%w: group %q has no options", ErrInvalidCatalog, g.ID)
		}
		sel[g.ID] = g.defaultChoice().Value
	}
	return sel, nil
}

// SetSelection returns a copy of sel with groupID remapped to value.
func SetSelection(catalog Catalog, sel Selection, groupID, value string) (Selection, error) {
	g, ok := catalog.group(groupID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, groupID)
	}
	if _, ok := g.option(value); !ok {
		return nil, fmt.Errorf("%w: %q in group %q", ErrUnknownOption, value, groupID)
	}

	next := make(Selection, len(sel)+1)
	maps.Copy(next, sel)
	next[groupID] = value
	return next, nil
}

// Derive computes the total price and representative image for a complete selection.
func Derive(catalog Catalog, basePrice float64, sel Selection) (Result, error) {
	chosen, err := resolve(catalog, sel)
	if err != nil {
		return Result{}, err
	}

	total := lo.Reduce(chosen, func(acc decimal.Decimal, o OptionChoice, _ int) decimal.Decimal {
		return acc.Add(decimal.NewFromFloat(o.PriceModifier))
	}, decimal.NewFromFloat(basePrice))

	image := lastImage(chosen)
	if colorImage, ok := colorOverride(catalog, chosen); ok {
		image = colorImage
	}

	return Result{
		TotalPrice:             total.InexactFloat64(),
		RepresentativeImageURL: image,
	}, nil
}

// resolve returns the chosen option of every group, in catalog order.
func resolve(catalog Catalog, sel Selection) ([]OptionChoice, error) {
	chosen := make([]OptionChoice, 0, len(catalog))
	for _, g := range catalog {
		value, ok := sel[g.ID]
		if !ok {
			return nil, fmt.Errorf("%w: group %q has no selected option", ErrIncompleteSelection, g.ID)
		}
		o, ok := g.option(value)
		if !ok {
			return nil, fmt.Errorf("%w: %q in group %q", ErrUnknownOption, value, g.ID)
		}
		chosen = append(chosen, o)
	}
	return chosen, nil
}

// lastImage is the first pass: the last chosen option defining an image wins.
func lastImage(chosen []OptionChoice) string {
	withImage := lo.Filter(chosen, func(o OptionChoice, _ int) bool { return o.ImageURL != "" })
	if len(withImage) == 0 {
		return ""
	}
	return withImage[len(withImage)-1].ImageURL
}

// colorOverride is the second pass: the color group's image has final say.
func colorOverride(catalog Catalog, chosen []OptionChoice) (string, bool) {
	_, idx, ok := lo.FindIndexOf(catalog, func(g OptionGroup) bool {
		return strings.EqualFold(g.ID, colorGroupID)
	})
	if !ok || chosen[idx].ImageURL == "" {
		return "", false
	}
	return chosen[idx].ImageURL, true
}

// FormatModifier renders a price modifier as a signed badge, empty for zero.
func FormatModifier(m float64) string {
	switch {
	case m > 0:
		return fmt.Sprintf("+$%.2f", m)
	case m < 0:
		return fmt.Sprintf("-$%.2f", math.Abs(m))
	default:
		return ""
	}
}
