package main

import (
	"errors"
	"net/http"

	"github.com/Simplici0/macclone/internal/catalog"
	"github.com/Simplici0/macclone/internal/support"
	"github.com/Simplici0/macclone/internal/zoom"
)

type galleryView struct {
	Selected catalog.GalleryImage   `json:"selected"`
	Images   []catalog.GalleryImage `json:"images"`
}

type zoomView struct {
	Active         bool       `json:"active"`
	Offset         zoom.Point `json:"offset"`
	BackgroundSize zoom.Size  `json:"backgroundSize"`
	Pane           zoom.Size  `json:"pane"`
}

type contactResponse struct {
	ID string `json:"id"`
}

func (s *server) handleSpecifications(w http.ResponseWriter, r *http.Request) {
	specs, err := s.catalog.Specs(r.Context(), r.URL.Query().Get("key") == "1")
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.GroupSpecs(specs))
}

func (s *server) handleGallery(w http.ResponseWriter, r *http.Request) {
	images, err := s.catalog.Gallery(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	selected, ok := catalog.SelectImage(images, r.URL.Query().Get("image"))
	if !ok {
		writeError(w, http.StatusNotFound, "gallery is empty")
		return
	}
	writeJSON(w, http.StatusOK, galleryView{Selected: selected, Images: images})
}

func (s *server) handleZoom(w http.ResponseWriter, r *http.Request) {
	req, err := parseZoomQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	offset, ok := zoom.Offset(req.box, req.factor, req.pane, req.pointer)
	size := zoom.BackgroundSize(req.box, req.factor)
	// Finite inputs can still overflow once scaled by the zoom factor.
	if !isFinite(offset.X, offset.Y, size.Width, size.Height) {
		writeError(w, http.StatusBadRequest, "zoom geometry out of range")
		return
	}
	writeJSON(w, http.StatusOK, zoomView{
		Active:         ok,
		Offset:         offset,
		BackgroundSize: size,
		Pane:           req.pane,
	})
}

type zoomQuery struct {
	box     zoom.Rect
	factor  float64
	pane    zoom.Size
	pointer zoom.Point
}

func parseZoomQuery(r *http.Request) (zoomQuery, error) {
	q := r.URL.Query()
	var (
		zq  zoomQuery
		err error
	)

	if zq.box.Left, err = parseFloat(q.Get("left"), "left"); err != nil {
		return zq, err
	}
	if zq.box.Top, err = parseFloat(q.Get("top"), "top"); err != nil {
		return zq, err
	}
	if zq.box.Width, err = parseNonNegativeFloat(q.Get("width"), "width"); err != nil {
		return zq, err
	}
	if zq.box.Height, err = parseNonNegativeFloat(q.Get("height"), "height"); err != nil {
		return zq, err
	}
	if zq.pointer.X, err = parseFloat(q.Get("x"), "x"); err != nil {
		return zq, err
	}
	if zq.pointer.Y, err = parseFloat(q.Get("y"), "y"); err != nil {
		return zq, err
	}
	if zq.factor, err = optionalFloat(q, "zoom", zoom.Defaults.Factor, parsePositiveFloat); err != nil {
		return zq, err
	}
	if zq.pane.Width, err = optionalFloat(q, "paneW", zoom.Defaults.Pane.Width, parsePositiveFloat); err != nil {
		return zq, err
	}
	if zq.pane.Height, err = optionalFloat(q, "paneH", zoom.Defaults.Pane.Height, parsePositiveFloat); err != nil {
		return zq, err
	}

	return zq, nil
}

func (s *server) handleFAQ(w http.ResponseWriter, r *http.Request) {
	faqs, err := s.catalog.FAQs(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, faqs)
}

func (s *server) handleContact(w http.ResponseWriter, r *http.Request) {
	var form support.ContactForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.support.Save(r.Context(), form)
	var fieldErrs support.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid contact form", Fields: fieldErrs})
		return
	case err != nil:
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, contactResponse{ID: id})
}
