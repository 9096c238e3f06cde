package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/plscore/leadscore-api/internal/pkg/httputil"
	"github.com/plscore/leadscore-api/internal/service/lead"
)

func leadIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "leadID"), 10, 64)
	if err != nil || id <= 0 {
		httputil.BadRequest(w, "invalid lead id")
		return 0, false
	}
	return id, true
}

// GetLead returns one lead with its detail and score.
func (h *Handlers) GetLead(w http.ResponseWriter, r *http.Request) {
	id, ok := leadIDParam(w, r)
	if !ok {
		return
	}
	sl, err := h.leads.Get(r.Context(), id)
	if errors.Is(err, lead.ErrNotFound) {
		httputil.NotFound(w, "lead not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, sl)
}

// ListLeads returns a filtered, paginated lead list ordered by score.
func (h *Handlers) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := lead.ListFilter{
		Search: q.Get("search"),
		Limit:  intQuery(q.Get("limit"), 50),
		Offset: intQuery(q.Get("offset"), 0),
	}
	f.Job = intQuery(q.Get("job_id"), 0)
	f.Marital = intQuery(q.Get("marital_id"), 0)
	f.Education = intQuery(q.Get("education_id"), 0)
	if v := q.Get("min_score"); v != "" {
		if s, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinScore = s
		}
	}
	if v := q.Get("max_score"); v != "" {
		if s, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxScore = s
		}
	}

	leads, total, err := h.leads.List(r.Context(), f)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OKMeta(w, leads, map[string]int{
		"total":  total,
		"limit":  f.Limit,
		"offset": f.Offset,
	})
}

// CreateLead persists a single lead, scoring it synchronously.
func (h *Handlers) CreateLead(w http.ResponseWriter, r *http.Request) {
	var in lead.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	sl, err := h.leads.Create(r.Context(), in)
	if errors.Is(err, lead.ErrDuplicateEmail) {
		httputil.Error(w, http.StatusConflict, "lead email already exists")
		return
	}
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.Created(w, "lead created", sl)
}

// UpdateLead applies a partial update to a lead.
func (h *Handlers) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := leadIDParam(w, r)
	if !ok {
		return
	}
	var u lead.UpdateFields
	if !httputil.Decode(w, r, &u) {
		return
	}
	sl, err := h.leads.Update(r.Context(), id, u)
	if errors.Is(err, lead.ErrNotFound) {
		httputil.NotFound(w, "lead not found")
		return
	}
	if errors.Is(err, lead.ErrDuplicateEmail) {
		httputil.Error(w, http.StatusConflict, "lead email already exists")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, sl)
}

// DeleteLead removes a lead and its sub-records.
func (h *Handlers) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, ok := leadIDParam(w, r)
	if !ok {
		return
	}
	err := h.leads.Delete(r.Context(), id)
	if errors.Is(err, lead.ErrNotFound) {
		httputil.NotFound(w, "lead not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]int64{"deleted": id})
}

// BatchDeleteLeads removes several leads in one call.
func (h *Handlers) BatchDeleteLeads(w http.ResponseWriter, r *http.Request) {
	var in struct {
		IDs []int64 `json:"lead_ids"`
	}
	if !httputil.Decode(w, r, &in) {
		return
	}
	if len(in.IDs) == 0 {
		httputil.BadRequest(w, "lead_ids is required")
		return
	}
	n, err := h.leads.BatchDelete(r.Context(), in.IDs)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]int{"deleted": n})
}

// ExplainLead returns the scorer's per-feature contribution breakdown.
func (h *Handlers) ExplainLead(w http.ResponseWriter, r *http.Request) {
	id, ok := leadIDParam(w, r)
	if !ok {
		return
	}
	exp, err := h.leads.Explain(r.Context(), id)
	if errors.Is(err, lead.ErrNotFound) {
		httputil.NotFound(w, "lead not found")
		return
	}
	if err != nil {
		httputil.Error(w, http.StatusBadGateway, "scoring service unavailable")
		return
	}
	httputil.OK(w, exp)
}

func intQuery(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
