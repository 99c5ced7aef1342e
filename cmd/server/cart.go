package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Simplici0/macclone/internal/cart"
	"github.com/Simplici0/macclone/internal/catalog"
	"github.com/Simplici0/macclone/internal/pricing"
)

var errCartFull = errors.New("cart is full")

type cartView struct {
	Items  []cartLineView `json:"items"`
	Count  int            `json:"count"`
	Totals cart.Totals    `json:"totals"`
}

type cartLineView struct {
	cart.Item
	LineTotal float64 `json:"lineTotal"`
}

type addToCartRequest struct {
	Slug      string            `json:"slug"`
	Selection map[string]string `json:"selection"`
	Quantity  int               `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// openCart is a visitor's cart priced against the current catalog. refs
// maps each line id back to the product and selection that produced it.
type openCart struct {
	sess  *sessions.Session
	items []cart.Item
	refs  map[string]cartRef
}

// add prices a configured product into the cart.
func (c *openCart) add(cfg configured, quantity int) {
	line := cfg.item(quantity)
	c.refs[line.ID] = cartRef{Slug: cfg.product.Slug, Selection: cfg.selection}
	c.items = cart.Add(c.items, line)
}

// compact is the cookie form of the cart, in line order.
func (c *openCart) compact() []cartRef {
	return lo.Map(c.items, func(it cart.Item, _ int) cartRef {
		ref := c.refs[it.ID]
		ref.Quantity = it.Quantity
		return ref
	})
}

func (s *server) newCartView(items []cart.Item) cartView {
	lines := lo.Map(items, func(it cart.Item, _ int) cartLineView {
		return cartLineView{Item: it, LineTotal: cart.LineTotal(it)}
	})
	return cartView{
		Items:  lines,
		Count:  cart.Count(items),
		Totals: cart.ComputeTotals(items, s.shippingCost),
	}
}

// loadCart reads the visitor's cookie and rebuilds every line from the
// catalog. An unreadable cookie is treated as an empty cart; lines whose
// product or options no longer exist are dropped.
func (s *server) loadCart(r *http.Request) (*openCart, error) {
	sess, refs, err := s.carts.load(r)
	if err != nil {
		s.log.Warn("discarding unreadable cart session", zap.Error(err))
	}

	oc := &openCart{sess: sess, items: make([]cart.Item, 0, len(refs)), refs: make(map[string]cartRef, len(refs))}
	for _, ref := range refs {
		cfg, err := s.configureRef(r.Context(), ref)
		switch {
		case err == nil:
			oc.add(cfg, ref.Quantity)
		case isStaleLine(err):
			s.log.Info("dropping stale cart line", zap.String("slug", ref.Slug), zap.Error(err))
		default:
			return nil, err
		}
	}
	return oc, nil
}

func (s *server) configureRef(ctx context.Context, ref cartRef) (configured, error) {
	product, err := s.catalog.Product(ctx, ref.Slug)
	if err != nil {
		return configured{}, err
	}
	return configure(product, ref.Selection)
}

// isStaleLine reports whether err comes from a cart line that no longer
// matches the catalog.
func isStaleLine(err error) bool {
	return errors.Is(err, catalog.ErrNotFound) ||
		errors.Is(err, pricing.ErrUnknownGroup) ||
		errors.Is(err, pricing.ErrUnknownOption) ||
		errors.Is(err, pricing.ErrIncompleteSelection) ||
		errors.Is(err, pricing.ErrInvalidCatalog)
}

// mutateCart applies fn to the visitor's cart, saves it and writes the result.
func (s *server) mutateCart(w http.ResponseWriter, r *http.Request, status int, fn func(*openCart) error) {
	oc, err := s.loadCart(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := fn(oc); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if err := s.carts.save(w, r, oc.sess, oc.compact()); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, status, s.newCartView(oc.items))
}

func (s *server) handleCart(w http.ResponseWriter, r *http.Request) {
	oc, err := s.loadCart(r)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.newCartView(oc.items))
}

func (s *server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}

	product, err := s.catalog.Product(r.Context(), req.Slug)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	cfg, err := configure(product, req.Selection)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	s.mutateCart(w, r, http.StatusCreated, func(oc *openCart) error {
		id := cfg.lineID()
		exists := lo.ContainsBy(oc.items, func(it cart.Item) bool { return it.ID == id })
		if !exists && len(oc.items) >= maxCartLines {
			return errCartFull
		}
		oc.add(cfg, req.Quantity)
		return nil
	})
}

// handleCartQuantity tolerates unknown ids: a stale client simply gets the
// current cart back.
func (s *server) handleCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	s.mutateCart(w, r, http.StatusOK, func(oc *openCart) error {
		oc.items = cart.SetQuantity(oc.items, id, req.Quantity)
		return nil
	})
}

func (s *server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutateCart(w, r, http.StatusOK, func(oc *openCart) error {
		oc.items = cart.Remove(oc.items, id)
		return nil
	})
}
