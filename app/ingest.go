package app

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/swissinfo-ch/skala/store"
)

// handlePost is the HTTP handler for the POST /m endpoint. One sample
// per request, from headers LBL, DOM, VAL and optional TS.
func (a *App) handlePost(w http.ResponseWriter, r *http.Request) {
	label := r.Header.Get("LBL")
	if label == "" {
		http.Error(w, "missing header LBL", http.StatusBadRequest)
		return
	}
	dom := r.Header.Get("DOM")
	if _, ok := a.domains.Lookup(dom); !ok {
		http.Error(w, fmt.Sprintf("unknown domain %q in header DOM", dom), http.StatusBadRequest)
		return
	}
	val, err := strconv.ParseFloat(r.Header.Get("VAL"), 64)
	if err != nil {
		http.Error(w, fmt.Errorf("failed to parse float64 in header VAL: %w", err).Error(), http.StatusBadRequest)
		return
	}
	if val < 0 || math.IsNaN(val) || math.IsInf(val, 0) {
		http.Error(w, "header VAL must be a non-negative finite number", http.StatusBadRequest)
		return
	}
	ts := uint32(time.Now().Unix())
	if tsHeader := r.Header.Get("TS"); tsHeader != "" {
		parsed, err := strconv.ParseUint(tsHeader, 10, 32)
		if err != nil {
			http.Error(w, fmt.Errorf("failed to parse uint32 in header TS: %w", err).Error(), http.StatusBadRequest)
			return
		}
		ts = uint32(parsed)
	}
	a.store.Add(&store.Sample{
		Time:   ts,
		Label:  label,
		Domain: dom,
		Value:  val,
	})
}
