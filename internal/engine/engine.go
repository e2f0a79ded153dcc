// Package engine implements the per-binding reconciliation: diff the
// addresses attached to a security group against its prefix list, evaluate
// quota headroom, and apply the minimal change under optimistic concurrency.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/rs/zerolog"

	"github.com/gllesch/plsync/internal/domain"
	"github.com/gllesch/plsync/internal/quota"
)

type Config struct {
	// MaxModifyAttempts bounds the read-diff-modify loop under version
	// conflicts. Each retry recomputes the diff from a fresh read.
	MaxModifyAttempts int
	BackoffBase       time.Duration
	BackoffCap        time.Duration
	// Defaults applied when a binding carries no thresholds of its own.
	DefaultPercentThreshold int
	DefaultBaseThreshold    int
}

func (c Config) withFallbacks() Config {
	if c.MaxModifyAttempts <= 0 {
		c.MaxModifyAttempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = 200 * time.Millisecond
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = 2 * time.Second
	}
	if c.BackoffCap < c.BackoffBase {
		c.BackoffCap = c.BackoffBase
	}
	return c
}

// backoffDelayer is satisfied by the SDK's jitter backoff; tests substitute a
// zero-delay stub.
type backoffDelayer interface {
	BackoffDelay(attempt int, err error) (time.Duration, error)
}

type Engine struct {
	provider Provider
	notifier Notifier
	cfg      Config
	backoff  backoffDelayer
	log      zerolog.Logger
}

func New(provider Provider, notifier Notifier, cfg Config, log zerolog.Logger) *Engine {
	cfg = cfg.withFallbacks()
	return &Engine{
		provider: provider,
		notifier: notifier,
		cfg:      cfg,
		backoff:  retry.NewExponentialJitterBackoff(cfg.BackoffCap),
		log:      log,
	}
}

// Reconcile drives one binding to its desired state. Idempotent: a second
// immediate call with no intervening state change returns NoChange. Exactly
// one modify call is made per successful run; failures are classified per the
// transient/conflict/permanent taxonomy and every non-clean outcome emits at
// least one notification.
func (e *Engine) Reconcile(ctx context.Context, b domain.Binding) domain.ReconciliationResult {
	log := e.log.With().
		Str("sg", b.SecurityGroupID).
		Str("prefix_list", b.PrefixListID).
		Logger()

	desired, err := e.provider.SecurityGroupAddresses(ctx, b.SecurityGroupRegion, b.SecurityGroupID)
	if err != nil {
		return e.fail(ctx, log, b, nil, fmt.Errorf("read network state: %w", err))
	}

	for attempt := 1; ; attempt++ {
		result, conflictErr := e.attempt(ctx, log, b, desired)
		if conflictErr == nil {
			return result
		}

		if attempt >= e.cfg.MaxModifyAttempts {
			result := domain.ReconciliationResult{
				Binding: b,
				Outcome: domain.OutcomeFailedConflict,
				Err:     fmt.Errorf("gave up after %d attempts: %w", attempt, conflictErr),
			}
			e.notifyFailure(ctx, b, result)
			log.Error().Err(result.Err).Int("attempts", attempt).Msg("reconcile failed on version conflicts")
			return result
		}

		log.Debug().Err(conflictErr).Int("attempt", attempt).Msg("version conflict, re-reading list state")
		if err := e.wait(ctx, attempt); err != nil {
			// Out of time budget; leave the conflict for the next tick.
			result := domain.ReconciliationResult{
				Binding: b,
				Outcome: domain.OutcomeFailedTransient,
				Err:     fmt.Errorf("backoff interrupted: %w", err),
			}
			e.notifyFailure(ctx, b, result)
			return result
		}
	}
}

// attempt performs one read-diff-gate-modify pass. A non-nil conflict error
// tells the caller to retry from a fresh read; every other path yields a
// final result.
func (e *Engine) attempt(ctx context.Context, log zerolog.Logger, b domain.Binding, desired domain.NetworkStateSnapshot) (domain.ReconciliationResult, error) {
	current, err := e.provider.PrefixListState(ctx, b.PrefixListRegion, b.PrefixListID)
	if err != nil {
		if domain.ClassOf(err) == domain.ClassConflict {
			return domain.ReconciliationResult{}, err
		}
		return e.fail(ctx, log, b, nil, fmt.Errorf("read list state: %w", err)), nil
	}

	toAdd, toRemove := diff(desired.CIDRs, current)

	warnings, err := e.evaluateRuleQuota(ctx, log, b)
	if err != nil {
		return e.fail(ctx, log, b, warnings, err), nil
	}

	projected := len(current.Entries) + len(toAdd) - len(toRemove)
	capacity := quota.Evaluate(domain.QuotaPrefixListCapacity, projected, current.MaxEntries, e.baseThreshold(b), e.percentThreshold(b))
	if capacity.Warning {
		warnings = append(warnings, capacity)
	}

	if projected > current.MaxEntries {
		// The modify call would hard-fail and can partially apply on some
		// providers; skipping is the safe state.
		result := domain.ReconciliationResult{
			Binding:  b,
			Outcome:  domain.OutcomeSkippedQuotaExceeded,
			Warnings: warnings,
		}
		e.notifier.Send(ctx, domain.SeverityWarning,
			e.subject(b),
			fmt.Sprintf("sync skipped: prefix list %s needs %d entries but holds at most %d; raise the list capacity or shrink the group",
				b.PrefixListID, projected, current.MaxEntries))
		log.Warn().Int("projected", projected).Int("max_entries", current.MaxEntries).Msg("skipping sync, list capacity exceeded")
		return result, nil
	}

	if len(toAdd) == 0 && len(toRemove) == 0 {
		result := domain.ReconciliationResult{
			Binding:  b,
			Outcome:  domain.OutcomeNoChange,
			Warnings: warnings,
		}
		e.notifyWarnings(ctx, b, warnings)
		log.Debug().Msg("list already in sync")
		return result, nil
	}

	addEntries := make([]domain.PrefixListEntry, 0, len(toAdd))
	for _, cidr := range toAdd {
		addEntries = append(addEntries, domain.PrefixListEntry{
			CIDR:        cidr,
			Description: entryDescription(b),
		})
	}

	if err := e.provider.ModifyPrefixList(ctx, b.PrefixListRegion, b.PrefixListID, current.Version, addEntries, toRemove); err != nil {
		if domain.ClassOf(err) == domain.ClassConflict {
			return domain.ReconciliationResult{}, err
		}
		return e.fail(ctx, log, b, warnings, fmt.Errorf("apply diff: %w", err)), nil
	}

	result := domain.ReconciliationResult{
		Binding:  b,
		Outcome:  domain.OutcomeApplied,
		Added:    toAdd,
		Removed:  toRemove,
		Warnings: warnings,
	}
	e.notifyWarnings(ctx, b, warnings)
	log.Info().
		Strs("added", toAdd).
		Strs("removed", toRemove).
		Int64("version", current.Version).
		Msg("prefix list updated")
	return result, nil
}

// evaluateRuleQuota computes the advisory security-group quota status. A
// vanished security group is a broken binding and fails the run; a failed
// quota lookup only costs the warning, never the sync.
func (e *Engine) evaluateRuleQuota(ctx context.Context, log zerolog.Logger, b domain.Binding) ([]domain.QuotaStatus, error) {
	usage, err := e.provider.SecurityGroupRuleUsage(ctx, b.SecurityGroupRegion, b.SecurityGroupID)
	if err != nil {
		if domain.ClassOf(err) == domain.ClassPermanent {
			return nil, fmt.Errorf("count security group rules: %w", err)
		}
		log.Warn().Err(err).Msg("rule usage unavailable, skipping quota warning")
		return nil, nil
	}

	limit, err := e.provider.SecurityGroupRuleQuota(ctx, b.SecurityGroupRegion)
	if err != nil {
		log.Warn().Err(err).Msg("rule quota unavailable, skipping quota warning")
		return nil, nil
	}

	status := quota.Evaluate(domain.QuotaSecurityGroupRules, usage, limit, e.baseThreshold(b), e.percentThreshold(b))
	if !status.Warning {
		return nil, nil
	}
	return []domain.QuotaStatus{status}, nil
}

func (e *Engine) fail(ctx context.Context, log zerolog.Logger, b domain.Binding, warnings []domain.QuotaStatus, err error) domain.ReconciliationResult {
	outcome := domain.OutcomeFailedTransient
	if domain.ClassOf(err) == domain.ClassPermanent {
		outcome = domain.OutcomeFailedPermanent
	}
	result := domain.ReconciliationResult{
		Binding:  b,
		Outcome:  outcome,
		Warnings: warnings,
		Err:      err,
	}
	e.notifyFailure(ctx, b, result)
	log.Error().Err(err).Str("outcome", string(outcome)).Msg("reconcile failed")
	return result
}

func (e *Engine) notifyFailure(ctx context.Context, b domain.Binding, result domain.ReconciliationResult) {
	severity := domain.SeverityWarning
	if result.Outcome == domain.OutcomeFailedPermanent {
		severity = domain.SeverityError
	}
	e.notifier.Send(ctx, severity, e.subject(b),
		fmt.Sprintf("sync failed (%s): %v", result.Outcome, result.Err))
}

func (e *Engine) notifyWarnings(ctx context.Context, b domain.Binding, warnings []domain.QuotaStatus) {
	for _, w := range warnings {
		e.notifier.Send(ctx, domain.SeverityWarning, e.subject(b),
			fmt.Sprintf("%s headroom low: %d of %d used, %d left", w.Resource, w.CurrentCount, w.Limit, w.Headroom))
	}
}

func (e *Engine) subject(b domain.Binding) string {
	return fmt.Sprintf("%s -> %s", b.SecurityGroupID, b.PrefixListID)
}

// wait sleeps the jittered backoff before a conflict retry, clamped to the
// configured bounds. It fails fast instead of outliving the caller's
// remaining time budget.
func (e *Engine) wait(ctx context.Context, attempt int) error {
	delay, err := e.backoff.BackoffDelay(attempt, nil)
	if err != nil || delay < e.cfg.BackoffBase {
		delay = e.cfg.BackoffBase
	}
	if delay > e.cfg.BackoffCap {
		delay = e.cfg.BackoffCap
	}

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= delay {
		return fmt.Errorf("remaining budget shorter than %s backoff", delay)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) percentThreshold(b domain.Binding) int {
	if b.PercentThreshold == 0 && b.BaseThreshold == 0 {
		return e.cfg.DefaultPercentThreshold
	}
	return b.PercentThreshold
}

func (e *Engine) baseThreshold(b domain.Binding) int {
	if b.PercentThreshold == 0 && b.BaseThreshold == 0 {
		return e.cfg.DefaultBaseThreshold
	}
	return b.BaseThreshold
}

// diff computes desired−current and current−desired by CIDR, sorted for
// stable logs and notifications.
func diff(desired []string, current domain.ListStateSnapshot) (toAdd, toRemove []string) {
	currentSet := current.CIDRSet()
	desiredSet := make(map[string]struct{}, len(desired))
	for _, cidr := range desired {
		if _, dup := desiredSet[cidr]; dup {
			continue
		}
		desiredSet[cidr] = struct{}{}
		if _, ok := currentSet[cidr]; !ok {
			toAdd = append(toAdd, cidr)
		}
	}
	for cidr := range currentSet {
		if _, ok := desiredSet[cidr]; !ok {
			toRemove = append(toRemove, cidr)
		}
	}
	sort.Strings(toAdd)
	sort.Strings(toRemove)
	return toAdd, toRemove
}

func entryDescription(b domain.Binding) string {
	return fmt.Sprintf("plsync:%s", b.SecurityGroupID)
}
