package main

import (
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/Simplici0/macclone/internal/cart"
	"github.com/Simplici0/macclone/internal/catalog"
	"github.com/Simplici0/macclone/internal/pricing"
)

type productOverview struct {
	Product  catalog.Product     `json:"product"`
	Features []catalog.Feature   `json:"features"`
	KeySpecs []catalog.SpecGroup `json:"keySpecs"`
}

type optionView struct {
	pricing.OptionChoice
	Badge    string `json:"badge,omitempty"`
	Selected bool   `json:"selected"`
}

type groupView struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Options []optionView `json:"options"`
}

type configurationView struct {
	Slug      string            `json:"slug"`
	BasePrice float64           `json:"basePrice"`
	Groups    []groupView       `json:"groups"`
	Selection pricing.Selection `json:"selection"`
	pricing.Result
}

// configured is a product with a fully resolved selection and its derived price.
type configured struct {
	product   catalog.Product
	selection pricing.Selection
	result    pricing.Result
}

func (s *server) handleProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.Products(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *server) handleProductOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	product, err := s.catalog.Product(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	features, err := s.catalog.Features(ctx)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	keySpecs, err := s.catalog.Specs(ctx, true)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, productOverview{
		Product:  product,
		Features: features,
		KeySpecs: catalog.GroupSpecs(keySpecs),
	})
}

// handleConfiguration starts from the product defaults and applies every
// query parameter as a group=value selection. Keys starting with "_" are
// left to the client (cache busting) and ignored.
func (s *server) handleConfiguration(w http.ResponseWriter, r *http.Request) {
	product, err := s.catalog.Product(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	query := lo.OmitBy(r.URL.Query(), func(key string, _ []string) bool {
		return strings.HasPrefix(key, "_")
	})
	overrides := lo.MapValues(query, func(values []string, _ string) string {
		return values[len(values)-1]
	})
	cfg, err := configure(product, overrides)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, configurationView{
		Slug:      product.Slug,
		BasePrice: product.BasePrice,
		Groups:    groupViews(product.OptionGroups, cfg.selection),
		Selection: cfg.selection,
		Result:    cfg.result,
	})
}

// configure resolves overrides on top of the default selection and derives
// the price. Overrides are applied in key order so errors are deterministic.
func configure(product catalog.Product, overrides map[string]string) (configured, error) {
	sel, err := pricing.InitializeSelection(product.OptionGroups)
	if err != nil {
		return configured{}, err
	}

	keys := lo.Keys(overrides)
	sort.Strings(keys)
	for _, groupID := range keys {
		sel, err = pricing.SetSelection(product.OptionGroups, sel, groupID, overrides[groupID])
		if err != nil {
			return configured{}, err
		}
	}

	res, err := pricing.Derive(product.OptionGroups, product.BasePrice, sel)
	if err != nil {
		return configured{}, err
	}
	return configured{product: product, selection: sel, result: res}, nil
}

func groupViews(groups pricing.Catalog, sel pricing.Selection) []groupView {
	return lo.Map(groups, func(g pricing.OptionGroup, _ int) groupView {
		return groupView{
			ID:   g.ID,
			Name: g.Name,
			Options: lo.Map(g.Options, func(o pricing.OptionChoice, _ int) optionView {
				return optionView{
					OptionChoice: o,
					Badge:        pricing.FormatModifier(o.PriceModifier),
					Selected:     sel[g.ID] == o.Value,
				}
			}),
		}
	})
}

// lineID identifies a configured product in the cart; identical
// configurations share a line.
func (c configured) lineID() string {
	if len(c.product.OptionGroups) == 0 {
		return c.product.Slug
	}
	parts := lo.Map(c.product.OptionGroups, func(g pricing.OptionGroup, _ int) string {
		return g.ID + "=" + c.selection[g.ID]
	})
	return c.product.Slug + ":" + strings.Join(parts, ",")
}

// lineName is the product name followed by the chosen option labels.
func (c configured) lineName() string {
	if len(c.product.OptionGroups) == 0 {
		return c.product.Name
	}
	labels := lo.Map(c.product.OptionGroups, func(g pricing.OptionGroup, _ int) string {
		o, _ := lo.Find(g.Options, func(o pricing.OptionChoice) bool { return o.Value == c.selection[g.ID] })
		return o.Label
	})
	return c.product.Name + " (" + strings.Join(labels, ", ") + ")"
}

func (c configured) imageURL() string {
	if c.result.RepresentativeImageURL != "" {
		return c.result.RepresentativeImageURL
	}
	return c.product.ImageURL
}

// item is the cart line for this configuration.
func (c configured) item(quantity int) cart.Item {
	return cart.Item{
		ID:          c.lineID(),
		Name:        c.lineName(),
		ImageURL:    c.imageURL(),
		UnitPrice:   c.result.TotalPrice,
		Quantity:    quantity,
		ProductLink: c.product.Link,
	}
}
