package report

import (
	"encoding/json"
	"fmt"

	"github.com/swissinfo-ch/skala/platform"
	"github.com/swissinfo-ch/skala/store"
	"github.com/swissinfo-ch/skala/unit"
)

// Units implements the Report interface.
// It groups samples into labelled series, picks one display unit per
// series with the configured strategy, and rescales every value into it.
type Units struct {
	Set      *unit.Set                // domains to resolve samples against
	Strategy unit.Strategy            // how to pick the unit of a series
	Filter   func(*store.Sample) bool // optional sample filter
	Cutoff   int                      // minimum samples for a series to be included
	Platform *platform.Info           // opaque host metadata, may be nil
}

// Series is one labelled list of values, rescaled into the chosen unit.
type Series struct {
	Domain string    `json:"domain"`
	Unit   string    `json:"unit"`
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

type unitsResult struct {
	Platform *platform.Info     `json:"platform,omitempty"`
	Strategy string             `json:"strategy"`
	Dropped  int                `json:"dropped"`
	Series   map[string]*Series `json:"series"`
}

type rawSeries struct {
	domain string
	values []float64
}

// Generate returns a json representation of the scaled series.
func (u *Units) Generate(samples <-chan *store.Sample) (*Result, error) {
	raw := make(map[string]*rawSeries)
	dropped := 0
	for s := range samples {
		if u.Filter != nil && !u.Filter(s) {
			continue
		}
		r, ok := raw[s.Label]
		if !ok {
			r = &rawSeries{domain: s.Domain}
			raw[s.Label] = r
		}
		// a series keeps the domain of its first sample,
		// contradicting samples are dropped
		if r.domain != s.Domain {
			dropped++
			continue
		}
		r.values = append(r.values, s.Value)
	}
	out := &unitsResult{
		Platform: u.Platform,
		Strategy: u.Strategy.String(),
		Dropped:  dropped,
		Series:   make(map[string]*Series, len(raw)),
	}
	for label, r := range raw {
		if len(r.values) < u.Cutoff {
			continue
		}
		d, ok := u.Set.Lookup(r.domain)
		if !ok {
			// stored under a domain no longer configured
			out.Dropped += len(r.values)
			continue
		}
		best, err := unit.BestUnit(d, r.values, u.Strategy)
		if err != nil {
			return nil, fmt.Errorf("failed to pick unit for series %q: %w", label, err)
		}
		scaled := make([]float64, len(r.values))
		for i, v := range r.values {
			scaled[i], err = d.ScaleTo(v, best.Name)
			if err != nil {
				return nil, fmt.Errorf("failed to scale series %q: %w", label, err)
			}
		}
		out.Series[label] = &Series{
			Domain: r.domain,
			Unit:   best.Name,
			Label:  best.Label,
			Values: scaled,
		}
	}
	content, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return &Result{ContentType: "application/json", Content: content}, nil
}
