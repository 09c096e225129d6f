package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"titlechat/internal/region"
)

// ─── GET /regions ─────────────────────────────────────────────────────────────

// HandleRegionList lists the regions with a registered bundle. Regions only
// reachable through the directory loader are not listed.
func HandleRegionList(reg *region.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		names := reg.Names()
		for i, n := range names {
			names[i] = region.Normalize(n)
		}
		writeJSON(w, http.StatusOK, map[string][]string{"regions": names})
	}
}

// ─── GET /regions/{slug}.json ─────────────────────────────────────────────────

// HandleRegion serves a region bundle by slug ("new-york") or two-letter
// code ("ny").
func HandleRegion(reg *region.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]
		name := region.Normalize(strings.ReplaceAll(slug, "-", " "))

		b, ok := reg.Resolve(r.Context(), name)
		if !ok {
			writeError(w, http.StatusNotFound, "no content for region "+name)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}
