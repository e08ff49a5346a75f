package report

import (
	"container/heap"
	"encoding/json"

	"github.com/swissinfo-ch/skala/store"
)

// Top is a report of the N labels with the most samples.
type Top struct {
	N      int                      // number of labels to include
	Filter func(*store.Sample) bool // optional sample filter
}

type item struct {
	label string
	count uint32
}

// min-heap on count, so the smallest of the kept labels is evicted first
type itemHeap []item

func (h itemHeap) Len() int           { return len(h) }
func (h itemHeap) Less(i, j int) bool { return h[i].count < h[j].count }
func (h itemHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x interface{}) {
	*h = append(*h, x.(item))
}

func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[0 : n-1]
	return it
}

// Generate returns a json representation of the top N labels by sample
// count.
func (t *Top) Generate(samples <-chan *store.Sample) (*Result, error) {
	counts := make(map[string]uint32)
	for s := range samples {
		if t.Filter != nil && !t.Filter(s) {
			continue
		}
		counts[s.Label]++
	}
	h := &itemHeap{}
	heap.Init(h)
	for label, count := range counts {
		if h.Len() < t.N {
			heap.Push(h, item{label, count})
		} else if count > (*h)[0].count {
			heap.Pop(h)
			heap.Push(h, item{label, count})
		}
	}
	topN := make(map[string]uint32, h.Len())
	for h.Len() > 0 {
		it := heap.Pop(h).(item)
		topN[it.label] = it.count
	}
	content, err := json.Marshal(topN)
	if err != nil {
		return nil, err
	}
	return &Result{ContentType: "application/json", Content: content}, nil
}
