package domain

// Outcome classifies one reconciliation run.
type Outcome string

const (
	OutcomeNoChange             Outcome = "NoChange"
	OutcomeApplied              Outcome = "Applied"
	OutcomeSkippedQuotaExceeded Outcome = "SkippedQuotaExceeded"
	OutcomeFailedConflict       Outcome = "FailedConflict"
	OutcomeFailedTransient      Outcome = "FailedTransient"
	OutcomeFailedPermanent      Outcome = "FailedPermanent"
)

// Clean reports whether the outcome needs no operator attention.
func (o Outcome) Clean() bool {
	return o == OutcomeNoChange || o == OutcomeApplied
}

// ReconciliationResult is the output of one engine run for one binding.
type ReconciliationResult struct {
	Binding  Binding
	Outcome  Outcome
	Added    []string
	Removed  []string
	Warnings []QuotaStatus
	Err      error
}

// AggregateResult summarizes one fan-out pass over all bindings.
type AggregateResult struct {
	RunID   string
	Results []ReconciliationResult
	Counts  map[Outcome]int
	Err     error
}

// NeedsAttention reports whether any binding finished with a non-clean
// outcome, or the pass itself failed before fan-out.
func (a AggregateResult) NeedsAttention() bool {
	if a.Err != nil {
		return true
	}
	for outcome, n := range a.Counts {
		if n > 0 && !outcome.Clean() {
			return true
		}
	}
	return false
}

// Severity grades notification events.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)
