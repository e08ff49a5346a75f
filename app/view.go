package app

import "net/http"

// handleGetView is the HTTP handler for the /v endpoint.
func (a *App) handleGetView(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "missing name query parameter", http.StatusBadRequest)
		return
	}
	result, exists := a.runner.Result(name)
	if !exists {
		http.Error(w, "view not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", result.ContentType)
	w.Write(result.Content)
}
