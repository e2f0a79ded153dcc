package engine

import (
	"context"
	"sync"
	"time"

	"github.com/gllesch/plsync/internal/domain"
)

type modifyCall struct {
	prefixListID string
	version      int64
	add          []domain.PrefixListEntry
	remove       []string
}

// fakeProvider serves canned state and records modify calls. With
// applyOnModify set it behaves like the real provider: the diff lands in the
// list and the version advances.
type fakeProvider struct {
	addresses     []string
	addressesErr  error
	ruleUsage     int
	ruleUsageErr  error
	ruleQuota     int
	ruleQuotaErr  error
	list          domain.ListStateSnapshot
	listErr       error
	modifyErr     error
	applyOnModify bool

	mu          sync.Mutex
	modifyCalls []modifyCall
}

func (f *fakeProvider) SecurityGroupAddresses(ctx context.Context, region, securityGroupID string) (domain.NetworkStateSnapshot, error) {
	if f.addressesErr != nil {
		return domain.NetworkStateSnapshot{}, f.addressesErr
	}
	return domain.NetworkStateSnapshot{CIDRs: f.addresses}, nil
}

func (f *fakeProvider) SecurityGroupRuleUsage(ctx context.Context, region, securityGroupID string) (int, error) {
	if f.ruleUsageErr != nil {
		return 0, f.ruleUsageErr
	}
	return f.ruleUsage, nil
}

func (f *fakeProvider) SecurityGroupRuleQuota(ctx context.Context, region string) (int, error) {
	if f.ruleQuotaErr != nil {
		return 0, f.ruleQuotaErr
	}
	return f.ruleQuota, nil
}

func (f *fakeProvider) PrefixListState(ctx context.Context, region, prefixListID string) (domain.ListStateSnapshot, error) {
	if f.listErr != nil {
		return domain.ListStateSnapshot{}, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list, nil
}

func (f *fakeProvider) ModifyPrefixList(ctx context.Context, region, prefixListID string, version int64, add []domain.PrefixListEntry, removeCIDRs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modifyCalls = append(f.modifyCalls, modifyCall{
		prefixListID: prefixListID,
		version:      version,
		add:          add,
		remove:       removeCIDRs,
	})
	if f.modifyErr != nil {
		return f.modifyErr
	}
	if f.applyOnModify {
		removed := make(map[string]struct{}, len(removeCIDRs))
		for _, cidr := range removeCIDRs {
			removed[cidr] = struct{}{}
		}
		var entries []domain.PrefixListEntry
		for _, e := range f.list.Entries {
			if _, ok := removed[e.CIDR]; !ok {
				entries = append(entries, e)
			}
		}
		f.list.Entries = append(entries, add...)
		f.list.Version++
	}
	return nil
}

type sentEvent struct {
	severity domain.Severity
	subject  string
	message  string
}

type fakeNotifier struct {
	mu    sync.Mutex
	sends []sentEvent
}

func (f *fakeNotifier) Send(ctx context.Context, severity domain.Severity, subject, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentEvent{severity: severity, subject: subject, message: message})
}

func (f *fakeNotifier) count(severity domain.Severity) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sends {
		if s.severity == severity {
			n++
		}
	}
	return n
}

// zeroBackoff removes retry delays from tests.
type zeroBackoff struct{}

func (zeroBackoff) BackoffDelay(attempt int, err error) (time.Duration, error) {
	return 0, nil
}
