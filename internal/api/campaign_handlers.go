package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plscore/leadscore-api/internal/domain"
	"github.com/plscore/leadscore-api/internal/pkg/httputil"
	"github.com/plscore/leadscore-api/internal/service/campaign"
)

// GetCampaign returns one campaign with its lead stats.
func (h *Handlers) GetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := h.campaigns.Get(r.Context(), chi.URLParam(r, "campaignID"))
	if errors.Is(err, campaign.ErrNotFound) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, c)
}

// ListCampaigns returns a filtered, paginated campaign list.
func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := campaign.ListFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Limit:  intQuery(q.Get("limit"), 50),
		Offset: intQuery(q.Get("offset"), 0),
	}
	campaigns, total, err := h.campaigns.List(r.Context(), f)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OKMeta(w, campaigns, map[string]int{
		"total":  total,
		"limit":  f.Limit,
		"offset": f.Offset,
	})
}

// CreateCampaign creates a campaign in draft status.
func (h *Handlers) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var in campaign.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	c, err := h.campaigns.Create(r.Context(), in)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.Created(w, "campaign created", c)
}

// UpdateCampaign applies a partial update.
func (h *Handlers) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var u campaign.UpdateFields
	if !httputil.Decode(w, r, &u) {
		return
	}
	id := chi.URLParam(r, "campaignID")
	err := h.campaigns.Update(r.Context(), id, u)
	if errors.Is(err, campaign.ErrNotFound) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	c, err := h.campaigns.Get(r.Context(), id)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, c)
}

// DeleteCampaign removes a draft or cancelled campaign.
func (h *Handlers) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	err := h.campaigns.Delete(r.Context(), chi.URLParam(r, "campaignID"))
	if errors.Is(err, campaign.ErrNotFound) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"deleted": chi.URLParam(r, "campaignID")})
}

// TransitionCampaign moves a campaign through its lifecycle.
func (h *Handlers) TransitionCampaign(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if !httputil.Decode(w, r, &in) {
		return
	}
	c, err := h.campaigns.Transition(r.Context(),
		chi.URLParam(r, "campaignID"), domain.CampaignStatus(in.Status))
	if errors.Is(err, campaign.ErrNotFound) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if errors.Is(err, campaign.ErrInvalidTransition) {
		httputil.Error(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, c)
}

// AssignCampaignLeads attaches leads to a campaign.
func (h *Handlers) AssignCampaignLeads(w http.ResponseWriter, r *http.Request) {
	var in struct {
		LeadIDs []int64 `json:"lead_ids"`
	}
	if !httputil.Decode(w, r, &in) {
		return
	}
	if len(in.LeadIDs) == 0 {
		httputil.BadRequest(w, "lead_ids is required")
		return
	}
	n, err := h.campaigns.AssignLeads(r.Context(), chi.URLParam(r, "campaignID"), in.LeadIDs)
	if errors.Is(err, campaign.ErrNotFound) {
		httputil.NotFound(w, "campaign not found")
		return
	}
	if errors.Is(err, campaign.ErrCampaignClosed) {
		httputil.Error(w, http.StatusConflict, "campaign is completed or cancelled")
		return
	}
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]int{"assigned": n})
}
