package app

import (
	"encoding/json"
	"net/http"

	"github.com/intob/jfmt"

	"github.com/swissinfo-ch/skala/platform"
)

// Status is a JSON-serializable struct for the /status endpoint.
type Status struct {
	FileSize        int64          `json:"fileSize"`        // sample log size in bytes
	SampleCount     uint32         `json:"sampleCount"`     // samples read in the last run
	LastRunDuration string         `json:"lastRunDuration"` // duration of the last run
	LastRunTime     int64          `json:"lastRunTime"`     // Unix timestamp of the last run
	Commit          string         `json:"commit"`          // Git commit hash
	NumCPU          int            `json:"numCPU"`          // number of CPU cores
	Platform        *platform.Info `json:"platform"`        // host metadata
}

// handleGetStatus is the HTTP handler for the /status endpoint.
func (a *App) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s := &Status{
		FileSize:        a.runner.FileSize(),
		SampleCount:     a.runner.SampleCount(),
		LastRunDuration: jfmt.FmtDuration(a.runner.LastRunDuration()),
		LastRunTime:     a.runner.LastRunTime().Unix(),
		Commit:          a.commit,
		NumCPU:          a.platform.CoreCount,
		Platform:        a.platform,
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		panic(err)
	}
	w.Write(data)
}
