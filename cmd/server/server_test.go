package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Simplici0/macclone/internal/catalog"
	"github.com/Simplici0/macclone/internal/db"
	"github.com/Simplici0/macclone/internal/migrations"
	"github.com/Simplici0/macclone/internal/seed"
	"github.com/Simplici0/macclone/internal/support"
)

const laptopSlug = "macclone-pro-16"

type testClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newTestServer(t *testing.T) *testClient {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, migrations.Up(ctx, database))
	fixture, err := catalog.DefaultFixture()
	require.NoError(t, err)
	_, err = seed.Run(ctx, database, fixture)
	require.NoError(t, err)

	srv := &server{
		log:          zap.NewNop(),
		catalog:      catalog.NewRepository(database),
		support:      support.NewStore(database),
		carts:        newCartSessions("test-secret", false),
		shippingCost: 15,
	}
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

// do sends body as JSON and decodes the response into out when non-nil.
func (c *testClient) do(method, path string, body, out any) int {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestConfiguration_Defaults(t *testing.T) {
	c := newTestServer(t)

	var got configurationView
	status := c.do(http.MethodGet, "/api/products/"+laptopSlug+"/configuration", nil, &got)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "16gb", got.Selection["ram"])
	assert.Equal(t, "512gb", got.Selection["ssd"])
	assert.InDelta(t, 1499.0, got.TotalPrice, 1e-9)
	assert.Contains(t, got.RepresentativeImageURL, "mclone_silver")
	require.Len(t, got.Groups, 4)
	assert.Equal(t, "-$200.00", got.Groups[1].Options[0].Badge)
}

func TestConfiguration_QueryOverrides(t *testing.T) {
	c := newTestServer(t)

	var got configurationView
	status := c.do(http.MethodGet, "/api/products/"+laptopSlug+"/configuration?ram=32gb&ssd=1tb&color=midnight", nil, &got)

	require.Equal(t, http.StatusOK, status)
	assert.InDelta(t, 1499.0+400+200+50, got.TotalPrice, 1e-9)
	assert.Contains(t, got.RepresentativeImageURL, "mclone_midnight")
}

func TestConfiguration_Errors(t *testing.T) {
	c := newTestServer(t)

	var errResp errorResponse
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/products/"+laptopSlug+"/configuration?gpu=32core", nil, &errResp))
	assert.Contains(t, errResp.Error, "unknown option group")

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/products/"+laptopSlug+"/configuration?ram=1tb", nil, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/products/macclone-air/configuration", nil, nil))
}

func TestConfiguration_IgnoresUnderscoreParams(t *testing.T) {
	c := newTestServer(t)

	var got configurationView
	status := c.do(http.MethodGet, "/api/products/"+laptopSlug+"/configuration?_=123&ram=32gb", nil, &got)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "32gb", got.Selection["ram"])
	assert.NotContains(t, got.Selection, "_")
}

func TestProductOverview(t *testing.T) {
	c := newTestServer(t)

	var got productOverview
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/products/"+laptopSlug, nil, &got))

	assert.Equal(t, "MacClone Pro 16-inch", got.Product.Name)
	assert.Len(t, got.Features, 3)
	assert.NotEmpty(t, got.KeySpecs)
}

func TestCartFlow(t *testing.T) {
	c := newTestServer(t)

	var view cartView
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/cart", nil, &view))
	assert.Empty(t, view.Items)
	assert.Equal(t, 0.0, view.Totals.Total)

	add := addToCartRequest{Slug: laptopSlug, Selection: map[string]string{"ram": "32gb"}, Quantity: 1}
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/cart/items", add, &view))
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/cart/items", add, &view))
	require.Len(t, view.Items, 1, "same configuration shares a line")
	laptop := view.Items[0]
	assert.Equal(t, 2, laptop.Quantity)
	assert.InDelta(t, 1899.0, laptop.UnitPrice, 1e-9)
	assert.Contains(t, laptop.Name, "32GB Unified Memory")

	hub := addToCartRequest{Slug: "usbc-hub-premium", Quantity: 1}
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/cart/items", hub, &view))
	require.Equal(t, 2, view.Count)
	assert.InDelta(t, 2*1899.0+59.99, view.Totals.Subtotal, 1e-9)
	assert.InDelta(t, 15.0, view.Totals.Shipping, 1e-9)
	assert.InDelta(t, 2*1899.0+59.99+15, view.Totals.Total, 1e-9)

	require.Equal(t, http.StatusOK, c.do(http.MethodPatch, "/api/cart/items/"+laptop.ID, quantityRequest{Quantity: -5}, &view))
	assert.Equal(t, 1, view.Items[0].Quantity)

	require.Equal(t, http.StatusOK, c.do(http.MethodPatch, "/api/cart/items/stale-id", quantityRequest{Quantity: 3}, &view))
	assert.Equal(t, 2, view.Count)

	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/api/cart/items/"+laptop.ID, nil, &view))
	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/api/cart/items/usbc-hub-premium", nil, &view))
	assert.Empty(t, view.Items)
	assert.Equal(t, 0.0, view.Totals.Subtotal)
	assert.Equal(t, 0.0, view.Totals.Shipping)
	assert.Equal(t, 0.0, view.Totals.Total)
}

func TestCartAdd_Rejects(t *testing.T) {
	c := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/cart/items", addToCartRequest{}, nil))
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/cart/items", addToCartRequest{Slug: "nope"}, nil))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/cart/items",
		addToCartRequest{Slug: laptopSlug, Selection: map[string]string{"color": "gold"}}, nil))
}

func TestCart_HoldsManyConfigurations(t *testing.T) {
	c := newTestServer(t)

	var adds []addToCartRequest
	for _, chip := range []string{"m3", "m3-pro", "m3-max"} {
		for _, ram := range []string{"8gb", "16gb", "32gb", "64gb"} {
			for _, ssd := range []string{"512gb", "1tb", "2tb", "4tb"} {
				adds = append(adds, addToCartRequest{
					Slug:      laptopSlug,
					Selection: map[string]string{"chip": chip, "ram": ram, "ssd": ssd, "color": "space-gray"},
					Quantity:  1,
				})
			}
		}
	}

	var view cartView
	for i, add := range adds[:maxCartLines] {
		require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/cart/items", add, &view), "add #%d", i+1)
		require.Equal(t, i+1, view.Count)
	}

	var errResp errorResponse
	require.Equal(t, http.StatusUnprocessableEntity, c.do(http.MethodPost, "/api/cart/items", adds[maxCartLines], &errResp))
	assert.Contains(t, errResp.Error, "cart is full")

	// Bumping an existing line is still allowed on a full cart.
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/cart/items", adds[0], &view))
	assert.Equal(t, 2, view.Items[0].Quantity)

	require.Equal(t, http.StatusOK, c.do(http.MethodPatch, "/api/cart/items/"+view.Items[5].ID, quantityRequest{Quantity: 7}, &view))
	assert.Equal(t, 7, view.Items[5].Quantity)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/cart", nil, &view))
	require.Equal(t, maxCartLines, view.Count)
	assert.Contains(t, view.Items[0].Name, "M3 (8-core CPU, 10-core GPU)")
	assert.Contains(t, view.Items[0].ImageURL, "mclone_gray")
	assert.InDelta(t, 1499.0-200, view.Items[0].UnitPrice, 1e-9)
}

func TestCart_RebuildsLinesFromCatalog(t *testing.T) {
	c := newTestServer(t)

	// Write a cookie the way the server would, including lines that no
	// longer match the catalog.
	carts := newCartSessions("test-secret", false)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, _, err := carts.load(req)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	require.NoError(t, carts.save(rec, req, sess, []cartRef{
		{Slug: "macclone-air", Quantity: 2},
		{Slug: "usbc-hub-premium", Quantity: 3},
		{Slug: laptopSlug, Selection: map[string]string{"ram": "128gb"}, Quantity: 1},
	}))
	base, err := url.Parse(c.base)
	require.NoError(t, err)
	c.http.Jar.SetCookies(base, rec.Result().Cookies())

	var view cartView
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/cart", nil, &view))

	require.Len(t, view.Items, 1)
	hub := view.Items[0]
	assert.Equal(t, "usbc-hub-premium", hub.ID)
	assert.Equal(t, "Premium USB-C Hub (7-in-1)", hub.Name)
	assert.Equal(t, 3, hub.Quantity)
	assert.InDelta(t, 3*59.99, hub.LineTotal, 1e-9)
}

func TestCart_IsPerSession(t *testing.T) {
	c := newTestServer(t)

	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/cart/items", addToCartRequest{Slug: "usbc-hub-premium"}, nil))

	other := &testClient{t: t, base: c.base, http: &http.Client{}}
	var view cartView
	require.Equal(t, http.StatusOK, other.do(http.MethodGet, "/api/cart", nil, &view))
	assert.Empty(t, view.Items)
}

func TestSpecificationsAndGallery(t *testing.T) {
	c := newTestServer(t)

	var groups []catalog.SpecGroup
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/specifications", nil, &groups))
	assert.Equal(t, "Processor & Memory", groups[0].Category)

	var gallery galleryView
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/gallery", nil, &gallery))
	assert.Equal(t, "front", gallery.Selected.ID)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/gallery?image=hinge_detail", nil, &gallery))
	assert.Equal(t, "hinge_detail", gallery.Selected.ID)
}

func TestZoom(t *testing.T) {
	c := newTestServer(t)

	var got zoomView
	status := c.do(http.MethodGet, "/api/gallery/zoom?left=0&top=0&width=100&height=100&zoom=2&paneW=200&paneH=200&x=150&y=50", nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, got.Active)
	assert.Equal(t, 0.0, got.Offset.X)
	assert.Equal(t, 0.0, got.Offset.Y)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/gallery/zoom?left=0&top=0&width=400&height=300&x=200&y=150", nil, &got))
	assert.Equal(t, 350.0, got.Pane.Width)
	assert.Equal(t, 1000.0, got.BackgroundSize.Width)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/gallery/zoom?left=a&top=0&width=1&height=1&x=0&y=0", nil, nil))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/gallery/zoom?left=0&top=0&width=1&height=1&x=0&y=0&zoom=0", nil, nil))
}

func TestZoom_RejectsNonFiniteInput(t *testing.T) {
	c := newTestServer(t)

	for _, query := range []string{
		"left=0&top=0&width=NaN&height=100&x=0&y=0",
		"left=0&top=0&width=Inf&height=100&x=0&y=0",
		"left=-Inf&top=0&width=100&height=100&x=0&y=0",
		"left=0&top=0&width=100&height=100&x=NaN&y=0",
		"left=0&top=0&width=100&height=100&x=0&y=0&zoom=NaN",
		"left=0&top=0&width=1e308&height=100&x=0&y=0",
	} {
		var errResp errorResponse
		status := c.do(http.MethodGet, "/api/gallery/zoom?"+query, nil, &errResp)
		assert.Equal(t, http.StatusBadRequest, status, query)
		assert.NotEmpty(t, errResp.Error, query)
	}
}

func TestSupport(t *testing.T) {
	c := newTestServer(t)

	var faqs []catalog.FAQ
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/support/faq", nil, &faqs))
	assert.Len(t, faqs, 5)

	form := support.ContactForm{Name: "Ada", Email: "ada@example.com", Subject: "Warranty", Message: "Does the warranty cover the hinge?"}
	var created contactResponse
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/support/contact", form, &created))
	assert.NotEmpty(t, created.ID)

	var errResp errorResponse
	require.Equal(t, http.StatusUnprocessableEntity, c.do(http.MethodPost, "/api/support/contact", support.ContactForm{Name: "A"}, &errResp))
	assert.Contains(t, errResp.Fields, "email")
}

func TestHealthz(t *testing.T) {
	c := newTestServer(t)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", nil, nil))
}
