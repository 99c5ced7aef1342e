package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/Simplici0/macclone/internal/catalog"
	"github.com/Simplici0/macclone/internal/pricing"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeFailure maps domain errors to client statuses and logs everything else.
func (s *server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errCartFull), errors.Is(err, errCartTooLarge):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, pricing.ErrUnknownGroup),
		errors.Is(err, pricing.ErrUnknownOption),
		errors.Is(err, pricing.ErrIncompleteSelection),
		errors.Is(err, pricing.ErrInvalidCatalog):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid body: %w", err)
	}
	return nil
}

func parseFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isFinite(value) {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	return value, nil
}

func isFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := parseFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := parseFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

// optionalFloat parses q[field] with parse, or returns fallback when absent.
func optionalFloat(q url.Values, field string, fallback float64, parse func(string, string) (float64, error)) (float64, error) {
	if !q.Has(field) {
		return fallback, nil
	}
	return parse(q.Get(field), field)
}
