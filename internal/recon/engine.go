package recon

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/smelter-recon/internal/model"
)

// Options tunes the engine. Zero values select the defaults.
type Options struct {
	FuzzyFloor   float64 // minimum fuzzy confidence to match at all (default 0.6)
	ClassifyGate float64 // minimum fuzzy confidence to trust the matched status (default 0.8)
	Workers      int     // concurrent matchers per compare call (default 4)
}

// Engine routes each declared facility through normalize → match →
// classify against a read-only Index. One Engine serves one comparison
// session; rebuild it when the reference selection changes.
type Engine struct {
	matcher *Matcher
	gate    float64
	workers int
}

// NewEngine creates an Engine over the given index.
func NewEngine(index *Index, opts Options) *Engine {
	gate := opts.ClassifyGate
	if gate <= 0 {
		gate = DefaultClassifyGate
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	return &Engine{
		matcher: NewMatcher(index, opts.FuzzyFloor),
		gate:    gate,
		workers: workers,
	}
}

// Compare reconciles every declared facility and returns one outcome per
// input, in input order. Matching one facility is independent of the rest,
// so the loop fans out across a bounded worker pool; the index is only
// read. The sole error is context cancellation.
func (e *Engine) Compare(ctx context.Context, supplier string, declared []model.DeclaredFacility) ([]model.MatchOutcome, error) {
	outcomes := make([]model.MatchOutcome, len(declared))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, fac := range declared {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := e.matcher.Match(fac)
			outcomes[i] = model.MatchOutcome{
				Supplier:         supplier,
				Declared:         fac,
				Tier:             res.Tier,
				Confidence:       res.Confidence,
				Matched:          res.Matched,
				MatchedStandards: res.Standards,
				Status:           classifyResult(res, e.gate),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Debug("recon: compare complete",
		zap.String("supplier", supplier),
		zap.Int("declared", len(declared)),
	)
	return outcomes, nil
}
