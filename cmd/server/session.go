package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/Simplici0/macclone/internal/pricing"
)

const (
	cartSessionName = "macclone_cart"
	cartItemsKey    = "items"

	// maxCartLines keeps the worst-case cookie well under 4KB.
	maxCartLines = 16
)

// errCartTooLarge means the cart no longer fits in its cookie.
var errCartTooLarge = errors.New("cart is too large")

// cartRef is the compact form of a cart line kept in the cookie. Names,
// prices and images are rebuilt from the catalog whenever the cart loads.
type cartRef struct {
	Slug      string            `json:"p"`
	Selection pricing.Selection `json:"o,omitempty"`
	Quantity  int               `json:"q"`
}

// cartSessions keeps each visitor's cart in a signed browser-session cookie.
// Nothing about a cart is stored server-side.
type cartSessions struct {
	store *sessions.CookieStore
}

func newCartSessions(secret string, secure bool) *cartSessions {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &cartSessions{store: store}
}

// load returns the visitor's cart lines. A missing or tampered cookie yields
// an empty cart together with the decode error so the caller can log it.
func (c *cartSessions) load(r *http.Request) (*sessions.Session, []cartRef, error) {
	sess, err := c.store.Get(r, cartSessionName)
	if err != nil {
		return sess, nil, fmt.Errorf("decode cart session: %w", err)
	}

	raw, ok := sess.Values[cartItemsKey].(string)
	if !ok || raw == "" {
		return sess, nil, nil
	}

	var refs []cartRef
	if err := json.Unmarshal([]byte(raw), &refs); err != nil {
		return sess, nil, fmt.Errorf("decode cart items: %w", err)
	}
	return sess, refs, nil
}

// save writes refs back to the cookie. It returns errCartTooLarge when the
// encoded cookie exceeds the store's length limit.
func (c *cartSessions) save(w http.ResponseWriter, r *http.Request, sess *sessions.Session, refs []cartRef) error {
	raw, err := json.Marshal(refs)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}
	sess.Values[cartItemsKey] = string(raw)

	// securecookie flattens its length error into a plain string, so check
	// the encoded size up front.
	if _, err := securecookie.EncodeMulti(sess.Name(), sess.Values, c.store.Codecs...); err != nil {
		return fmt.Errorf("%w: %v", errCartTooLarge, err)
	}
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save cart session: %w", err)
	}
	return nil
}
