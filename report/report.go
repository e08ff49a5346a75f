package report

import (
	"time"

	"github.com/swissinfo-ch/skala/store"
)

type Result struct {
	ContentType string
	Content     []byte
}

// Report consumes the sample stream of one run and produces a result.
// Generate must drain its channel before returning, so the fan-out
// never blocks on a finished job.
type Report interface {
	Generate(<-chan *store.Sample) (*Result, error)
}

// YoungerThan reports whether the sample is younger than d.
func YoungerThan(s *store.Sample, d time.Duration) bool {
	return s.Time > uint32(time.Now().Add(-d).Unix())
}
