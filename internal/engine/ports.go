package engine

import (
	"context"

	"github.com/gllesch/plsync/internal/domain"
)

// Provider is the slice of the cloud API the engine needs. Implemented by
// internal/aws; reconciliation logic never sees SDK types.
type Provider interface {
	// SecurityGroupAddresses returns the desired state: every private address
	// attached to the group, as single-host CIDRs.
	SecurityGroupAddresses(ctx context.Context, region, securityGroupID string) (domain.NetworkStateSnapshot, error)
	// SecurityGroupRuleUsage returns the group's current rule-quota consumption.
	SecurityGroupRuleUsage(ctx context.Context, region, securityGroupID string) (int, error)
	// SecurityGroupRuleQuota returns the applied per-group rule limit.
	SecurityGroupRuleQuota(ctx context.Context, region string) (int, error)
	// PrefixListState returns entries, version token and capacity in one
	// logically-atomic read.
	PrefixListState(ctx context.Context, region, prefixListID string) (domain.ListStateSnapshot, error)
	// ModifyPrefixList applies a diff guarded by the version token; a stale
	// version yields a conflict-classified error.
	ModifyPrefixList(ctx context.Context, region, prefixListID string, version int64, add []domain.PrefixListEntry, removeCIDRs []string) error
}

// Notifier delivers warning/error events. Fire-and-forget: implementations
// must not fail the reconciliation.
type Notifier interface {
	Send(ctx context.Context, severity domain.Severity, subject, message string)
}
