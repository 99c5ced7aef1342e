package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/macclone/internal/pricing"
)

// Repository reads storefront content from SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository returns a Repository reading from db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Products lists every product with its option groups, in display order.
func (r *Repository) Products(ctx context.Context) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT slug, name, headline, description, base_price, image_url, link
		FROM products
		ORDER BY position, slug
	`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.Slug, &p.Name, &p.Headline, &p.Description, &p.BasePrice, &p.ImageURL, &p.Link); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	for i := range products {
		groups, err := r.optionGroups(ctx, products[i].Slug)
		if err != nil {
			return nil, err
		}
		products[i].OptionGroups = groups
	}

	return products, nil
}

// Product returns one product by slug, or ErrNotFound.
func (r *Repository) Product(ctx context.Context, slug string) (Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, `
		SELECT slug, name, headline, description, base_price, image_url, link
		FROM products
		WHERE slug = ?
	`, slug).Scan(&p.Slug, &p.Name, &p.Headline, &p.Description, &p.BasePrice, &p.ImageURL, &p.Link)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, fmt.Errorf("product %q: %w", slug, ErrNotFound)
		}
		return Product{}, fmt.Errorf("query product %q: %w", slug, err)
	}

	p.OptionGroups, err = r.optionGroups(ctx, slug)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *Repository) optionGroups(ctx context.Context, slug string) (pricing.Catalog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.default_option, c.value, c.label, c.price_modifier, c.image_url
		FROM option_groups g
		JOIN option_choices c ON c.product_slug = g.product_slug AND c.group_id = g.id
		WHERE g.product_slug = ?
		ORDER BY g.position, c.position
	`, slug)
	if err != nil {
		return nil, fmt.Errorf("query option groups for %q: %w", slug, err)
	}
	defer rows.Close()

	groups := make(pricing.Catalog, 0)
	for rows.Next() {
		var (
			g pricing.OptionGroup
			o pricing.OptionChoice
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.DefaultOption, &o.Value, &o.Label, &o.PriceModifier, &o.ImageURL); err != nil {
			return nil, fmt.Errorf("scan option choice: %w", err)
		}
		if n := len(groups); n == 0 || groups[n-1].ID != g.ID {
			groups = append(groups, g)
		}
		last := &groups[len(groups)-1]
		last.Options = append(last.Options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate option choices: %w", err)
	}

	return groups, nil
}

// Specs lists specification rows in table order. keyOnly restricts the
// result to the summary shown on the product overview.
func (r *Repository) Specs(ctx context.Context, keyOnly bool) ([]Spec, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category, name, value, key_spec
		FROM specs
		WHERE (? = FALSE OR key_spec = TRUE)
		ORDER BY position
	`, keyOnly)
	if err != nil {
		return nil, fmt.Errorf("query specs: %w", err)
	}
	defer rows.Close()

	specs := make([]Spec, 0)
	for rows.Next() {
		var s Spec
		if err := rows.Scan(&s.ID, &s.Category, &s.Name, &s.Value, &s.Key); err != nil {
			return nil, fmt.Errorf("scan spec: %w", err)
		}
		specs = append(specs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate specs: %w", err)
	}
	return specs, nil
}

// Gallery lists gallery images in display order.
func (r *Repository) Gallery(ctx context.Context) ([]GalleryImage, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, src, alt FROM gallery_images ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query gallery: %w", err)
	}
	defer rows.Close()

	images := make([]GalleryImage, 0)
	for rows.Next() {
		var img GalleryImage
		if err := rows.Scan(&img.ID, &img.Src, &img.Alt); err != nil {
			return nil, fmt.Errorf("scan gallery image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gallery: %w", err)
	}
	return images, nil
}

// FAQs lists support questions in display order.
func (r *Repository) FAQs(ctx context.Context) ([]FAQ, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, question, answer FROM faqs ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query faqs: %w", err)
	}
	defer rows.Close()

	faqs := make([]FAQ, 0)
	for rows.Next() {
		var f FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer); err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		faqs = append(faqs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faqs: %w", err)
	}
	return faqs, nil
}

// Features lists overview highlights in display order.
func (r *Repository) Features(ctx context.Context) ([]Feature, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT title, description FROM features ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query features: %w", err)
	}
	defer rows.Close()

	features := make([]Feature, 0)
	for rows.Next() {
		var f Feature
		if err := rows.Scan(&f.Title, &f.Description); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate features: %w", err)
	}
	return features, nil
}
