package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/plscore/leadscore-api/internal/domain"
	"github.com/plscore/leadscore-api/internal/progress"
	"github.com/plscore/leadscore-api/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scorerFunc func(ctx context.Context, csvText string, limit int) ([]float64, error)

func (f scorerFunc) ScoreBatch(ctx context.Context, csvText string, limit int) ([]float64, error) {
	return f(ctx, csvText, limit)
}

// fixedScorer returns the given score for every row in the batch.
func fixedScorer(score float64) scorerFunc {
	return func(_ context.Context, csvText string, _ int) ([]float64, error) {
		rows := strings.Count(strings.TrimRight(csvText, "\n"), "\n") // minus header
		out := make([]float64, rows)
		for i := range out {
			out[i] = score
		}
		return out, nil
	}
}

// fakeRepo records inserted leads and can be told to reject specific row
// indexes, mimicking per-row failure isolation.
type fakeRepo struct {
	inserted []domain.NormalizedLead
	failIdx  map[int]bool
	fatalErr error
}

func (r *fakeRepo) BulkInsertScored(_ context.Context, leads []domain.NormalizedLead, onRow func(saved int)) (domain.BulkResult, error) {
	if r.fatalErr != nil {
		return domain.BulkResult{}, r.fatalErr
	}
	var res domain.BulkResult
	for i, l := range leads {
		if r.failIdx[i] {
			res.FailureCount++
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: duplicate email", i))
		} else {
			r.inserted = append(r.inserted, l)
			res.SuccessCount++
		}
		if onRow != nil {
			onRow(res.SuccessCount)
		}
	}
	return res, nil
}

func buildCSV(n int) []byte {
	var b strings.Builder
	b.WriteString("name,email,age,job,marital,education,balance,housing,loan,contact,day,month,duration,campaign,pdays,previous,poutcome,default\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Person %d,p%d@example.com,3%d,services,married,secondary,100,yes,no,cellular,5,may,60,1,-1,0,unknown,no\n", i, i, i%10)
	}
	return []byte(b.String())
}

func newTestImporter(scorer BatchScorer, repo BulkInserter) (*Importer, *progress.Registry, string) {
	reg := progress.NewRegistry(time.Minute)
	id := reg.Create()
	return NewImporter(reg, scorer, repo), reg, id
}

func TestRunHappyPath(t *testing.T) {
	repo := &fakeRepo{}
	imp, reg, id := newTestImporter(fixedScorer(0.5), repo)

	raw := []byte("name,email,age,job\nAlice,alice@example.com,40,management\nBob,bob@example.com,35,services\n,,,\n")
	// the blank third row still has matching field count, so it flows through
	imp.Run(context.Background(), id, raw, 0)

	snap, ok := reg.Get(id)
	require.True(t, ok)
	assert.Equal(t, progress.StatusComplete, snap.Status)
	assert.Equal(t, 3, snap.Total)
	assert.Equal(t, 3, snap.Saved)
	assert.Empty(t, snap.Error)

	require.Len(t, repo.inserted, 3)
	assert.Equal(t, "alice@example.com", repo.inserted[0].Email)
	// row with no identity gets synthetic fallbacks
	assert.Equal(t, "Lead 3", repo.inserted[2].Name)
	assert.Contains(t, repo.inserted[2].Email, "@missing.com")
	for _, l := range repo.inserted {
		assert.InDelta(t, 0.5, l.Score, 1e-9)
	}
}

func TestRunScorerFailureIsFatal(t *testing.T) {
	repo := &fakeRepo{}
	scorer := scorerFunc(func(context.Context, string, int) ([]float64, error) {
		return nil, errors.New("scoring service unreachable: connection refused")
	})
	imp, reg, id := newTestImporter(scorer, repo)

	imp.Run(context.Background(), id, buildCSV(10), 0)

	snap, _ := reg.Get(id)
	assert.Equal(t, progress.StatusError, snap.Status)
	assert.Contains(t, snap.Error, "unreachable")
	// total was already announced before scoring, saved stays zero
	assert.Equal(t, 10, snap.Total)
	assert.Equal(t, 0, snap.Saved)
	assert.Empty(t, repo.inserted, "nothing may be persisted when scoring fails")
}

func TestRunPartialPersistenceFailure(t *testing.T) {
	repo := &fakeRepo{failIdx: map[int]bool{42: true}}
	imp, reg, id := newTestImporter(fixedScorer(0.3), repo)

	imp.Run(context.Background(), id, buildCSV(100), 0)

	snap, _ := reg.Get(id)
	assert.Equal(t, progress.StatusComplete, snap.Status)
	assert.Equal(t, 100, snap.Total)
	assert.Equal(t, 99, snap.Saved)
	assert.Equal(t, "1 records failed", snap.Error)
	assert.Len(t, repo.inserted, 99)
}

func TestRunRepoFatalError(t *testing.T) {
	repo := &fakeRepo{fatalErr: errors.New("database unavailable")}
	imp, reg, id := newTestImporter(fixedScorer(0.1), repo)

	imp.Run(context.Background(), id, buildCSV(5), 0)

	snap, _ := reg.Get(id)
	assert.Equal(t, progress.StatusError, snap.Status)
	assert.Equal(t, "database unavailable", snap.Error)
}

func TestRunEmptyFile(t *testing.T) {
	repo := &fakeRepo{}
	imp, reg, id := newTestImporter(fixedScorer(0.1), repo)

	for _, raw := range [][]byte{nil, []byte(""), []byte("name,email\n")} {
		imp.Run(context.Background(), id, raw, 0)
		snap, _ := reg.Get(id)
		assert.Equal(t, progress.StatusError, snap.Status)
		assert.Contains(t, snap.Error, "no data rows")
	}
	assert.Empty(t, repo.inserted)
}

func TestRunScoreCountMismatch(t *testing.T) {
	repo := &fakeRepo{}
	scorer := scorerFunc(func(context.Context, string, int) ([]float64, error) {
		return []float64{0.9}, nil // one score for many rows
	})
	imp, reg, id := newTestImporter(scorer, repo)

	imp.Run(context.Background(), id, buildCSV(4), 0)

	snap, _ := reg.Get(id)
	assert.Equal(t, progress.StatusError, snap.Status)
	assert.Contains(t, snap.Error, "mismatched")
	assert.Empty(t, repo.inserted)
}

func TestRunSamplingLimit(t *testing.T) {
	repo := &fakeRepo{}
	imp, reg, id := newTestImporter(fixedScorer(0.2), repo)

	imp.Run(context.Background(), id, buildCSV(200), 50)

	snap, _ := reg.Get(id)
	assert.Equal(t, progress.StatusComplete, snap.Status)
	assert.Equal(t, 50, snap.Total)
	assert.Equal(t, 50, snap.Saved)
	assert.Len(t, repo.inserted, 50)
}

func TestRunSubscriberSeesProgress(t *testing.T) {
	repo := &fakeRepo{}
	imp, reg, id := newTestImporter(fixedScorer(0.2), repo)

	sub, _, ok := reg.Attach(id)
	require.True(t, ok)
	defer reg.Detach(id, sub)

	imp.Run(context.Background(), id, buildCSV(60), 0)

	var snaps []progress.Snapshot
	for {
		select {
		case s := <-sub.C():
			snaps = append(snaps, s)
			continue
		default:
		}
		break
	}
	require.NotEmpty(t, snaps)

	last := snaps[len(snaps)-1]
	assert.Equal(t, progress.StatusComplete, last.Status)
	assert.Equal(t, 60, last.Saved)

	// intermediate saved counts land on the throttle interval
	var sawIntermediate bool
	for _, s := range snaps[:len(snaps)-1] {
		if s.Saved > 0 && s.Saved < 60 {
			sawIntermediate = true
			assert.Zero(t, s.Saved%25)
		}
	}
	assert.True(t, sawIntermediate)
}

// End to end against a real scorer client talking to a stub HTTP service.
func TestRunWithHTTPScorer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		fmt.Fprint(w, `[{"ml_score":0.71},{"ml_score":0.42}]`)
	}))
	defer srv.Close()

	repo := &fakeRepo{}
	imp, reg, id := newTestImporter(scoring.NewClient(srv.URL), repo)

	imp.Run(context.Background(), id, buildCSV(2), 0)

	snap, _ := reg.Get(id)
	assert.Equal(t, progress.StatusComplete, snap.Status)
	assert.Equal(t, 2, snap.Saved)
	require.Len(t, repo.inserted, 2)
	assert.InDelta(t, 0.71, repo.inserted[0].Score, 1e-9)
	assert.InDelta(t, 0.42, repo.inserted[1].Score, 1e-9)
}

type spyInvalidator struct{ calls int }

func (s *spyInvalidator) Invalidate(ctx context.Context) { s.calls++ }

func TestRunInvalidatesCacheAfterPersist(t *testing.T) {
	repo := &fakeRepo{}
	inv := &spyInvalidator{}
	imp, reg, id := newTestImporter(fixedScorer(0.5), repo)
	imp.WithCacheInvalidator(inv)

	imp.Run(context.Background(), id, buildCSV(3), 0)

	snap, _ := reg.Get(id)
	require.Equal(t, progress.StatusComplete, snap.Status)
	assert.Equal(t, 1, inv.calls)

	// A scorer failure persists nothing, so the cache stays untouched.
	imp2, _, id2 := newTestImporter(scorerFunc(func(ctx context.Context, csvText string, limit int) ([]float64, error) {
		return nil, fmt.Errorf("model offline")
	}), repo)
	imp2.WithCacheInvalidator(inv)
	imp2.Run(context.Background(), id2, buildCSV(3), 0)
	assert.Equal(t, 1, inv.calls)
}
