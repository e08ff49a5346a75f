package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/swissinfo-ch/skala/unit"
)

// scaleResult is the JSON response of the /scale endpoint.
type scaleResult struct {
	Domain   string    `json:"domain"`
	Strategy string    `json:"strategy"`
	Unit     string    `json:"unit"`
	Label    string    `json:"label"`
	Values   []float64 `json:"values"`
}

// handleGetScale is the HTTP handler for the /scale endpoint: ad-hoc
// unit selection over query parameters d (domain), s (strategy),
// u (explicit unit, skips selection) and v (comma-separated values).
func (a *App) handleGetScale(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d, ok := a.domains.Lookup(q.Get("d"))
	if !ok {
		http.Error(w, fmt.Sprintf("unknown domain %q", q.Get("d")), http.StatusBadRequest)
		return
	}
	strategy, err := unit.ParseStrategy(q.Get("s"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var values []float64
	if raw := q.Get("v"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				http.Error(w, fmt.Errorf("failed to parse value %q: %w", part, err).Error(), http.StatusBadRequest)
				return
			}
			values = append(values, v)
		}
	}
	chosen, err := a.pickUnit(d, values, strategy, q.Get("u"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	scaled := make([]float64, len(values))
	for i, v := range values {
		scaled[i], err = d.ScaleTo(v, chosen.Name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	result := &scaleResult{
		Domain:   d.Name(),
		Strategy: strategy.String(),
		Unit:     chosen.Name,
		Label:    chosen.Label,
		Values:   scaled,
	}
	data, err := json.Marshal(result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// pickUnit resolves the explicitly named unit, or selects one for the
// whole list.
func (a *App) pickUnit(d unit.Domain, values []float64, strategy unit.Strategy, name string) (unit.Unit, error) {
	if name == "" {
		return unit.BestUnit(d, values, strategy)
	}
	for _, u := range d.Units() {
		if u.Name == name {
			return u, nil
		}
	}
	return unit.Unit{}, fmt.Errorf("%w: %q in domain %q", unit.ErrUnknownUnit, name, d.Name())
}
