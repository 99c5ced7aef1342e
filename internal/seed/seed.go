package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/macclone/internal/catalog"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run loads the storefront fixture into the catalog tables. New rows are
// inserted and rows whose content drifted from the fixture are updated, so
// running it on every start is safe.
func Run(ctx context.Context, db *sql.DB, fixture catalog.Fixture) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	steps := []func(context.Context, *sql.Tx, catalog.Fixture, *Stats) error{
		ensureProducts,
		ensureSpecs,
		ensureGallery,
		ensureFAQs,
		ensureFeatures,
	}
	for _, step := range steps {
		if err := step(ctx, tx, fixture, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

// upsert describes one fixture row: exists checks for the key, write is an
// INSERT ... ON CONFLICT DO UPDATE ... WHERE <changed> statement.
type upsert struct {
	what   string
	exists string
	key    []any
	write  string
	args   []any
}

func apply(ctx context.Context, tx *sql.Tx, stats *Stats, u upsert) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, u.exists, u.key...).Scan(&exists); err != nil {
		return fmt.Errorf("check %s existence: %w", u.what, err)
	}

	res, err := tx.ExecContext(ctx, u.write, u.args...)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", u.what, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert %s: %w", u.what, err)
	}

	if exists {
		stats.Updates += int(n)
	} else {
		stats.Inserts += int(n)
	}
	return nil
}

func ensureProducts(ctx context.Context, tx *sql.Tx, f catalog.Fixture, stats *Stats) error {
	for pos, p := range f.Products {
		if err := apply(ctx, tx, stats, upsert{
			what:   "product " + p.Slug,
			exists: `SELECT EXISTS(SELECT 1 FROM products WHERE slug = ?)`,
			key:    []any{p.Slug},
			write: `
				INSERT INTO products (slug, name, headline, description, base_price, image_url, link, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(slug) DO UPDATE SET
					name = excluded.name,
					headline = excluded.headline,
					description = excluded.description,
					base_price = excluded.base_price,
					image_url = excluded.image_url,
					link = excluded.link,
					position = excluded.position
				WHERE name IS NOT excluded.name
					OR headline IS NOT excluded.headline
					OR description IS NOT excluded.description
					OR base_price IS NOT excluded.base_price
					OR image_url IS NOT excluded.image_url
					OR link IS NOT excluded.link
					OR position IS NOT excluded.position
			`,
			args: []any{p.Slug, p.Name, p.Headline, p.Description, p.BasePrice, p.ImageURL, p.Link, pos},
		}); err != nil {
			return err
		}

		for gpos, g := range p.OptionGroups {
			if err := apply(ctx, tx, stats, upsert{
				what:   "option group " + g.ID,
				exists: `SELECT EXISTS(SELECT 1 FROM option_groups WHERE product_slug = ? AND id = ?)`,
				key:    []any{p.Slug, g.ID},
				write: `
					INSERT INTO option_groups (product_slug, id, name, default_option, position)
					VALUES (?, ?, ?, ?, ?)
					ON CONFLICT(product_slug, id) DO UPDATE SET
						name = excluded.name,
						default_option = excluded.default_option,
						position = excluded.position
					WHERE name IS NOT excluded.name
						OR default_option IS NOT excluded.default_option
						OR position IS NOT excluded.position
				`,
				args: []any{p.Slug, g.ID, g.Name, g.DefaultOption, gpos},
			}); err != nil {
				return err
			}

			for opos, o := range g.Options {
				if err := apply(ctx, tx, stats, upsert{
					what:   "option " + g.ID + "/" + o.Value,
					exists: `SELECT EXISTS(SELECT 1 FROM option_choices WHERE product_slug = ? AND group_id = ? AND value = ?)`,
					key:    []any{p.Slug, g.ID, o.Value},
					write: `
						INSERT INTO option_choices (product_slug, group_id, value, label, price_modifier, image_url, position)
						VALUES (?, ?, ?, ?, ?, ?, ?)
						ON CONFLICT(product_slug, group_id, value) DO UPDATE SET
							label = excluded.label,
							price_modifier = excluded.price_modifier,
							image_url = excluded.image_url,
							position = excluded.position
						WHERE label IS NOT excluded.label
							OR price_modifier IS NOT excluded.price_modifier
							OR image_url IS NOT excluded.image_url
							OR position IS NOT excluded.position
					`,
					args: []any{p.Slug, g.ID, o.Value, o.Label, o.PriceModifier, o.ImageURL, opos},
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func ensureSpecs(ctx context.Context, tx *sql.Tx, f catalog.Fixture, stats *Stats) error {
	for pos, s := range f.Specs {
		if err := apply(ctx, tx, stats, upsert{
			what:   "spec " + s.ID,
			exists: `SELECT EXISTS(SELECT 1 FROM specs WHERE id = ?)`,
			key:    []any{s.ID},
			write: `
				INSERT INTO specs (id, category, name, value, key_spec, position)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					category = excluded.category,
					name = excluded.name,
					value = excluded.value,
					key_spec = excluded.key_spec,
					position = excluded.position
				WHERE category IS NOT excluded.category
					OR name IS NOT excluded.name
					OR value IS NOT excluded.value
					OR key_spec IS NOT excluded.key_spec
					OR position IS NOT excluded.position
			`,
			args: []any{s.ID, s.Category, s.Name, s.Value, s.Key, pos},
		}); err != nil {
			return err
		}
	}
	return nil
}

func ensureGallery(ctx context.Context, tx *sql.Tx, f catalog.Fixture, stats *Stats) error {
	for pos, img := range f.Gallery {
		if err := apply(ctx, tx, stats, upsert{
			what:   "gallery image " + img.ID,
			exists: `SELECT EXISTS(SELECT 1 FROM gallery_images WHERE id = ?)`,
			key:    []any{img.ID},
			write: `
				INSERT INTO gallery_images (id, src, alt, position)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					src = excluded.src,
					alt = excluded.alt,
					position = excluded.position
				WHERE src IS NOT excluded.src
					OR alt IS NOT excluded.alt
					OR position IS NOT excluded.position
			`,
			args: []any{img.ID, img.Src, img.Alt, pos},
		}); err != nil {
			return err
		}
	}
	return nil
}

func ensureFAQs(ctx context.Context, tx *sql.Tx, f catalog.Fixture, stats *Stats) error {
	for pos, q := range f.FAQs {
		if err := apply(ctx, tx, stats, upsert{
			what:   "faq " + q.ID,
			exists: `SELECT EXISTS(SELECT 1 FROM faqs WHERE id = ?)`,
			key:    []any{q.ID},
			write: `
				INSERT INTO faqs (id, question, answer, position)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					question = excluded.question,
					answer = excluded.answer,
					position = excluded.position
				WHERE question IS NOT excluded.question
					OR answer IS NOT excluded.answer
					OR position IS NOT excluded.position
			`,
			args: []any{q.ID, q.Question, q.Answer, pos},
		}); err != nil {
			return err
		}
	}
	return nil
}

func ensureFeatures(ctx context.Context, tx *sql.Tx, f catalog.Fixture, stats *Stats) error {
	for pos, ft := range f.Features {
		if err := apply(ctx, tx, stats, upsert{
			what:   "feature " + ft.Title,
			exists: `SELECT EXISTS(SELECT 1 FROM features WHERE title = ?)`,
			key:    []any{ft.Title},
			write: `
				INSERT INTO features (title, description, position)
				VALUES (?, ?, ?)
				ON CONFLICT(title) DO UPDATE SET
					description = excluded.description,
					position = excluded.position
				WHERE description IS NOT excluded.description
					OR position IS NOT excluded.position
			`,
			args: []any{ft.Title, ft.Description, pos},
		}); err != nil {
			return err
		}
	}
	return nil
}
