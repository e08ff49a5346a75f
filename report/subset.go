package report

import (
	"encoding/json"

	"github.com/swissinfo-ch/skala/store"
)

// Subset is a report that returns a subset of samples
// based on a filter and a limit. Samples arrive newest blocks first, so
// the subset approximates the most recent matches.
type Subset struct {
	Filter func(*store.Sample) bool // optional sample filter
	Limit  int                      // maximum number of samples to include
}

// Generate returns a json representation of the subset of samples.
func (s *Subset) Generate(samples <-chan *store.Sample) (*Result, error) {
	data := make([]*store.Sample, 0, s.Limit)
	for sample := range samples {
		if s.Filter != nil && !s.Filter(sample) {
			continue
		}
		data = append(data, sample)
		if len(data) >= s.Limit {
			break
		}
	}
	// drain so the fan-out never blocks on this job
	for range samples {
	}
	content, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Result{ContentType: "application/json", Content: content}, nil
}
