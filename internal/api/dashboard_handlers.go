package api

import (
	"net/http"
	"time"

	"github.com/plscore/leadscore-api/internal/domain"
	"github.com/plscore/leadscore-api/internal/pkg/httputil"
)

// GetDashboard returns the cached lead aggregates.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dash.Summary(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, stats)
}

// GetVocabularies exposes the categorical vocabularies for front-end
// dropdowns; codes are 1-based positions.
func (h *Handlers) GetVocabularies(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string][]string{
		"job":       domain.JobNames,
		"marital":   domain.MaritalNames,
		"education": domain.EducationNames,
		"month":     domain.MonthNames,
		"poutcome":  domain.OutcomeNames,
		"contact":   domain.ContactNames,
	})
}

// HealthCheck reports process and database liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "ok"
	code := http.StatusOK
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			status, dbStatus = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
	} else {
		dbStatus = "not configured"
	}
	httputil.JSON(w, code, map[string]string{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
