package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/plscore/leadscore-api/internal/domain"
	"github.com/plscore/leadscore-api/internal/ingest"
	"github.com/plscore/leadscore-api/internal/pkg/logger"
	"github.com/plscore/leadscore-api/internal/progress"
)

// Progress updates are pushed to the session registry every this many
// persisted rows, plus one final update when the batch finishes.
const progressUpdateEvery = 25

// BatchScorer scores a delimited-text batch, returning one score per row in
// the same order.
type BatchScorer interface {
	ScoreBatch(ctx context.Context, csvText string, limit int) ([]float64, error)
}

// BulkInserter persists scored leads with per-row failure isolation. onRow is
// invoked after every attempted row with the running saved count.
type BulkInserter interface {
	BulkInsertScored(ctx context.Context, leads []domain.NormalizedLead, onRow func(saved int)) (domain.BulkResult, error)
}

// CacheInvalidator drops derived caches that a bulk import makes stale.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// Importer runs the asynchronous lead import pipeline: decode, sample,
// normalize, score, persist. It reports state exclusively through the session
// registry; Run never returns an error because by the time it executes the
// HTTP response has already been sent.
type Importer struct {
	registry *progress.Registry
	scorer   BatchScorer
	repo     BulkInserter
	cache    CacheInvalidator
}

func NewImporter(registry *progress.Registry, scorer BatchScorer, repo BulkInserter) *Importer {
	return &Importer{registry: registry, scorer: scorer, repo: repo}
}

// WithCacheInvalidator makes the importer drop the given cache after any
// import that persisted rows.
func (imp *Importer) WithCacheInvalidator(c CacheInvalidator) *Importer {
	imp.cache = c
	return imp
}

// Run processes one uploaded file under the given session. Meant to be
// launched as `go imp.Run(...)` after the session has been created.
func (imp *Importer) Run(ctx context.Context, sessionID string, raw []byte, limit int) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("lead import panicked", "session_id", sessionID, "panic", fmt.Sprint(r))
			imp.fail(sessionID, "internal error during import")
		}
	}()

	headers, rows := ingest.DecodeWithHeaders(raw)
	if len(rows) == 0 {
		logger.Warn("lead import rejected empty file", "session_id", sessionID)
		imp.fail(sessionID, "no data rows found in uploaded file")
		return
	}

	rows = ingest.Sample(rows, limit)
	leads := ingest.NormalizeRows(rows, time.Now())

	imp.registry.Update(sessionID, progress.Update{
		Status: progress.St(progress.StatusProcessing),
		Total:  progress.N(len(leads)),
	})
	logger.Info("lead import started", "session_id", sessionID, "rows", len(leads))

	// The scorer consumes the raw delimited text of the sampled rows and
	// answers positionally, one score per row.
	scores, err := imp.scorer.ScoreBatch(ctx, ingest.EncodeDelimited(headers, rows), 0)
	if err != nil {
		logger.Error("batch scoring failed", "session_id", sessionID, "error", err.Error())
		imp.fail(sessionID, err.Error())
		return
	}
	if len(scores) != len(leads) {
		logger.Error("batch scoring returned wrong row count",
			"session_id", sessionID, "want", len(leads), "got", len(scores))
		imp.fail(sessionID, "scoring service returned a mismatched result set")
		return
	}
	for i := range leads {
		leads[i].Score = scores[i]
	}

	result, err := imp.repo.BulkInsertScored(ctx, leads, func(saved int) {
		if saved > 0 && saved%progressUpdateEvery == 0 {
			imp.registry.Update(sessionID, progress.Update{Saved: progress.N(saved)})
		}
	})
	if err != nil {
		logger.Error("bulk persistence failed", "session_id", sessionID, "error", err.Error())
		imp.fail(sessionID, err.Error())
		return
	}

	// Partial persistence failures still complete the session; the error
	// field carries the failed-row count for the client to surface.
	final := progress.Update{
		Status: progress.St(progress.StatusComplete),
		Saved:  progress.N(result.SuccessCount),
	}
	if result.FailureCount > 0 {
		final.Error = progress.Str(fmt.Sprintf("%d records failed", result.FailureCount))
	}
	imp.registry.Update(sessionID, final)
	if imp.cache != nil && result.SuccessCount > 0 {
		imp.cache.Invalidate(ctx)
	}
	logger.Info("lead import finished", "session_id", sessionID,
		"saved", result.SuccessCount, "failed", result.FailureCount)
}

func (imp *Importer) fail(sessionID, msg string) {
	imp.registry.Update(sessionID, progress.Update{
		Status: progress.St(progress.StatusError),
		Error:  progress.Str(msg),
	})
}
