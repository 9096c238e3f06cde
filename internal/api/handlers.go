package api

import (
	"database/sql"

	"github.com/plscore/leadscore-api/internal/progress"
	"github.com/plscore/leadscore-api/internal/service/campaign"
	"github.com/plscore/leadscore-api/internal/service/dashboard"
	"github.com/plscore/leadscore-api/internal/service/lead"
	"github.com/plscore/leadscore-api/internal/worker"
)

// Handlers bundles the services behind the HTTP endpoints.
type Handlers struct {
	leads     *lead.Service
	campaigns *campaign.Service
	dash      *dashboard.Service
	registry  *progress.Registry
	importer  *worker.Importer
	db        *sql.DB

	maxUploadBytes int64
}

// NewHandlers wires the handler set. maxUploadMB caps the accepted upload
// size; zero falls back to 25MB.
func NewHandlers(
	leads *lead.Service,
	campaigns *campaign.Service,
	dash *dashboard.Service,
	registry *progress.Registry,
	importer *worker.Importer,
	db *sql.DB,
	maxUploadMB int,
) *Handlers {
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	return &Handlers{
		leads:          leads,
		campaigns:      campaigns,
		dash:           dash,
		registry:       registry,
		importer:       importer,
		db:             db,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}
