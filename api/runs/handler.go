package runs

import (
	"encoding/json"
	"net/http"

	"github.com/kilianp07/wrsn/core/runstatus"
)

// NewHandler exposes run status via GET /api/runs and GET /api/runs/{id}.
// Requests must include an Authorization header with "Bearer <token>" when
// token is non-empty.
func NewHandler(store runstatus.Store, token string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/runs", func(w http.ResponseWriter, r *http.Request) {
		f := runstatus.Filter{
			State:  r.URL.Query().Get("state"),
			Policy: r.URL.Query().Get("policy"),
		}
		writeJSON(w, store.List(f))
	})
	mux.HandleFunc("GET /api/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		st, ok := store.Get(r.PathValue("id"))
		if !ok {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		writeJSON(w, st)
	})
	return authorize(token, mux)
}

func authorize(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
