package aws

import (
	"context"

	"github.com/gllesch/plsync/internal/domain"
)

// ProviderConfig carries the quota identity the reconciliation engine tracks
// for security groups.
type ProviderConfig struct {
	QuotaServiceCode string
	RuleQuotaCode    string
}

// Provider routes engine calls to the regional client a binding side lives in.
type Provider struct {
	pool *ClientPool
	cfg  ProviderConfig
}

func NewProvider(pool *ClientPool, cfg ProviderConfig) *Provider {
	return &Provider{pool: pool, cfg: cfg}
}

func (p *Provider) SecurityGroupAddresses(ctx context.Context, region, securityGroupID string) (domain.NetworkStateSnapshot, error) {
	return p.pool.ForRegion(region).SecurityGroupAddresses(ctx, securityGroupID)
}

func (p *Provider) SecurityGroupRuleUsage(ctx context.Context, region, securityGroupID string) (int, error) {
	return p.pool.ForRegion(region).SecurityGroupRuleUsage(ctx, securityGroupID)
}

func (p *Provider) SecurityGroupRuleQuota(ctx context.Context, region string) (int, error) {
	return p.pool.ForRegion(region).AppliedQuota(ctx, p.cfg.QuotaServiceCode, p.cfg.RuleQuotaCode)
}

func (p *Provider) PrefixListState(ctx context.Context, region, prefixListID string) (domain.ListStateSnapshot, error) {
	return p.pool.ForRegion(region).PrefixListState(ctx, prefixListID)
}

func (p *Provider) ModifyPrefixList(ctx context.Context, region, prefixListID string, version int64, add []domain.PrefixListEntry, removeCIDRs []string) error {
	return p.pool.ForRegion(region).ModifyPrefixList(ctx, prefixListID, version, add, removeCIDRs)
}
