package app

import (
	"net/http"
	"sync/atomic"

	"gsocscout.dev/internal/pipeline"
)

// scraping guards against overlapping pipeline runs; the GitHub rate limit
// does not survive two concurrent scrapes.
var scraping atomic.Bool

func (s *Server) handleScrapeAll(w http.ResponseWriter, r *http.Request) {
	if !scraping.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "a scrape is already running")
		return
	}
	defer scraping.Store(false)

	runner := pipeline.NewDefaultRunner(s.cs, s.opts)
	results := runner.RunAll(r.Context())
	writeJSON(w, statusFor(results), map[string]any{"results": results})
}

func (s *Server) handleScrapeStage(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("stage") == "all" {
		s.handleScrapeAll(w, r)
		return
	}
	stage, err := pipeline.Select(pipeline.DefaultStages(s.cs, s.opts), r.PathValue("stage"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if !scraping.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "a scrape is already running")
		return
	}
	defer scraping.Store(false)

	res := stage.Run(r.Context())
	writeJSON(w, statusFor([]*pipeline.StageResult{res}), res)
}

func statusFor(results []*pipeline.StageResult) int {
	for _, r := range results {
		if !r.Success {
			return http.StatusInternalServerError
		}
	}
	return http.StatusOK
}
