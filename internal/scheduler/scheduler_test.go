package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gllesch/plsync/internal/domain"
)

type fakeRegistry struct {
	bindings []domain.Binding
	err      error
}

func (f *fakeRegistry) ListBindings(ctx context.Context) ([]domain.Binding, error) {
	return f.bindings, f.err
}

// fakeReconciler returns a canned outcome per security group and tracks how
// many reconciles overlap.
type fakeReconciler struct {
	outcomes map[string]domain.Outcome
	delay    time.Duration

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
}

func (f *fakeReconciler) Reconcile(ctx context.Context, b domain.Binding) domain.ReconciliationResult {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	outcome, ok := f.outcomes[b.SecurityGroupID]
	if !ok {
		outcome = domain.OutcomeNoChange
	}
	result := domain.ReconciliationResult{Binding: b, Outcome: outcome}
	if !outcome.Clean() {
		result.Err = errors.New("injected failure")
	}
	return result
}

type fakeNotifier struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakeNotifier) Send(ctx context.Context, severity domain.Severity, subject, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, fmt.Sprintf("%s: %s", severity, message))
}

func bindings(n int) []domain.Binding {
	result := make([]domain.Binding, n)
	for i := range result {
		result[i] = domain.Binding{
			SecurityGroupID:     fmt.Sprintf("sg-%03d", i),
			SecurityGroupRegion: "us-east-1",
			PrefixListID:        fmt.Sprintf("pl-%03d", i),
			PrefixListRegion:    "us-east-1",
		}
	}
	return result
}

func TestRunAll_IsolatesFailingBinding(t *testing.T) {
	registry := &fakeRegistry{bindings: bindings(5)}
	reconciler := &fakeReconciler{
		outcomes: map[string]domain.Outcome{
			"sg-002": domain.OutcomeFailedPermanent,
		},
	}
	notifier := &fakeNotifier{}

	aggregate := New(registry, reconciler, notifier, 3, zerolog.Nop()).RunAll(context.Background())

	if len(aggregate.Results) != 5 {
		t.Fatalf("got %d results, want 5", len(aggregate.Results))
	}
	if aggregate.Counts[domain.OutcomeFailedPermanent] != 1 {
		t.Errorf("FailedPermanent count = %d, want 1", aggregate.Counts[domain.OutcomeFailedPermanent])
	}
	if aggregate.Counts[domain.OutcomeNoChange] != 4 {
		t.Errorf("NoChange count = %d, want 4", aggregate.Counts[domain.OutcomeNoChange])
	}
	if !aggregate.NeedsAttention() {
		t.Error("aggregate with a permanent failure must need attention")
	}
	if len(notifier.sends) != 1 {
		t.Errorf("summary notifications = %d, want 1", len(notifier.sends))
	}
}

func TestRunAll_CleanRunSendsNoSummary(t *testing.T) {
	registry := &fakeRegistry{bindings: bindings(3)}
	reconciler := &fakeReconciler{
		outcomes: map[string]domain.Outcome{
			"sg-000": domain.OutcomeApplied,
		},
	}
	notifier := &fakeNotifier{}

	aggregate := New(registry, reconciler, notifier, 3, zerolog.Nop()).RunAll(context.Background())

	if aggregate.NeedsAttention() {
		t.Error("clean run must not need attention")
	}
	if len(notifier.sends) != 0 {
		t.Errorf("notifications = %v, want none for a clean run", notifier.sends)
	}
}

func TestRunAll_RespectsWorkerLimit(t *testing.T) {
	registry := &fakeRegistry{bindings: bindings(8)}
	reconciler := &fakeReconciler{delay: 20 * time.Millisecond}
	notifier := &fakeNotifier{}

	New(registry, reconciler, notifier, 2, zerolog.Nop()).RunAll(context.Background())

	if reconciler.maxInFlight > 2 {
		t.Errorf("max in-flight reconciles = %d, want at most 2", reconciler.maxInFlight)
	}
}

func TestRunAll_RegistryFailure(t *testing.T) {
	registry := &fakeRegistry{err: errors.New("table missing")}
	notifier := &fakeNotifier{}

	aggregate := New(registry, &fakeReconciler{}, notifier, 3, zerolog.Nop()).RunAll(context.Background())

	if aggregate.Err == nil {
		t.Fatal("expected aggregate error when listing fails")
	}
	if len(aggregate.Results) != 0 {
		t.Errorf("got %d results, want none", len(aggregate.Results))
	}
	if len(notifier.sends) != 1 {
		t.Errorf("notifications = %d, want 1 for the aborted run", len(notifier.sends))
	}
}

func TestSummarize(t *testing.T) {
	counts := map[domain.Outcome]int{
		domain.OutcomeApplied:         2,
		domain.OutcomeNoChange:        5,
		domain.OutcomeFailedTransient: 1,
	}
	got := summarize(counts)
	want := "Applied=2 FailedTransient=1 NoChange=5"
	if got != want {
		t.Errorf("summarize = %q, want %q", got, want)
	}
}
