// Package scheduler fans one reconciliation out over every onboarded binding
// with bounded concurrency, isolating per-binding failures.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gllesch/plsync/internal/domain"
	"github.com/gllesch/plsync/internal/engine"
)

// Registry lists the bindings to reconcile.
type Registry interface {
	ListBindings(ctx context.Context) ([]domain.Binding, error)
}

// Reconciler is the per-binding unit of work.
type Reconciler interface {
	Reconcile(ctx context.Context, b domain.Binding) domain.ReconciliationResult
}

type Scheduler struct {
	registry   Registry
	reconciler Reconciler
	notifier   engine.Notifier
	limit      int
	log        zerolog.Logger
}

func New(registry Registry, reconciler Reconciler, notifier engine.Notifier, limit int, log zerolog.Logger) *Scheduler {
	if limit <= 0 {
		limit = 5
	}
	return &Scheduler{
		registry:   registry,
		reconciler: reconciler,
		notifier:   notifier,
		limit:      limit,
		log:        log,
	}
}

// RunAll reconciles every onboarded binding. Bindings run concurrently up to
// the worker limit; one binding's failure never aborts the others. A summary
// notification goes out when any binding finished in a non-clean outcome.
func (s *Scheduler) RunAll(ctx context.Context) domain.AggregateResult {
	runID := uuid.NewString()
	log := s.log.With().Str("run_id", runID).Logger()

	bindings, err := s.registry.ListBindings(ctx)
	if err != nil {
		err = fmt.Errorf("list bindings: %w", err)
		log.Error().Err(err).Msg("fan-out aborted")
		s.notifier.Send(ctx, domain.SeverityError, "sync run "+runID, err.Error())
		return domain.AggregateResult{RunID: runID, Err: err}
	}
	log.Info().Int("bindings", len(bindings)).Int("workers", s.limit).Msg("starting fan-out")

	results := make([]domain.ReconciliationResult, len(bindings))
	g := errgroup.Group{}
	g.SetLimit(s.limit)
	for i, b := range bindings {
		i, b := i, b
		g.Go(func() error {
			results[i] = s.reconciler.Reconcile(ctx, b)
			return nil
		})
	}
	// Workers never return errors; isolation lives in the per-binding result.
	_ = g.Wait()

	counts := make(map[domain.Outcome]int)
	for _, r := range results {
		counts[r.Outcome]++
	}
	aggregate := domain.AggregateResult{
		RunID:   runID,
		Results: results,
		Counts:  counts,
	}

	log.Info().Int("bindings", len(bindings)).Str("summary", summarize(counts)).Msg("fan-out finished")
	if aggregate.NeedsAttention() {
		s.notifier.Send(ctx, domain.SeverityWarning, "sync run "+runID,
			fmt.Sprintf("%d bindings processed: %s", len(bindings), summarize(counts)))
	}
	return aggregate
}

func summarize(counts map[domain.Outcome]int) string {
	outcomes := make([]string, 0, len(counts))
	for outcome := range counts {
		outcomes = append(outcomes, string(outcome))
	}
	sort.Strings(outcomes)

	parts := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		parts = append(parts, fmt.Sprintf("%s=%d", outcome, counts[domain.Outcome(outcome)]))
	}
	if len(parts) == 0 {
		return "no bindings"
	}
	return strings.Join(parts, " ")
}
