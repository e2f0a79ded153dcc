package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/gllesch/plsync/internal/domain"
)

// stateReadAttempts bounds the describe/entries/describe loop that keeps the
// returned version honest when a concurrent modification lands mid-read.
const stateReadAttempts = 3

// PrefixListState reads the list's entries, version token and capacity as one
// logically-atomic snapshot. The entries call carries no version, so the list
// is described before and after draining entries; a version that moved in
// between means the entries may straddle two generations and the read is
// repeated.
func (c *Client) PrefixListState(ctx context.Context, prefixListID string) (domain.ListStateSnapshot, error) {
	var lastVersion int64
	for attempt := 0; attempt < stateReadAttempts; attempt++ {
		before, err := c.describePrefixList(ctx, prefixListID)
		if err != nil {
			return domain.ListStateSnapshot{}, err
		}

		entries, err := c.prefixListEntries(ctx, prefixListID)
		if err != nil {
			return domain.ListStateSnapshot{}, err
		}

		after, err := c.describePrefixList(ctx, prefixListID)
		if err != nil {
			return domain.ListStateSnapshot{}, err
		}

		lastVersion = derefInt64(after.Version)
		if derefInt64(before.Version) != lastVersion {
			continue
		}

		return domain.ListStateSnapshot{
			Entries:    toListEntries(entries),
			Version:    lastVersion,
			MaxEntries: int(derefInt32(after.MaxEntries)),
		}, nil
	}
	return domain.ListStateSnapshot{}, domain.Conflict(
		fmt.Errorf("prefix list %s: version moved during %d consecutive reads (last %d)", prefixListID, stateReadAttempts, lastVersion))
}

// ModifyPrefixList applies the diff as a single version-guarded modify call.
// The provider rejects the call if its current version no longer matches.
func (c *Client) ModifyPrefixList(ctx context.Context, prefixListID string, version int64, add []domain.PrefixListEntry, removeCIDRs []string) error {
	input := &ec2.ModifyManagedPrefixListInput{
		PrefixListId:   aws.String(prefixListID),
		CurrentVersion: aws.Int64(version),
	}
	for _, entry := range add {
		input.AddEntries = append(input.AddEntries, ec2types.AddPrefixListEntry{
			Cidr:        aws.String(entry.CIDR),
			Description: aws.String(entry.Description),
		})
	}
	for _, cidr := range removeCIDRs {
		input.RemoveEntries = append(input.RemoveEntries, ec2types.RemovePrefixListEntry{
			Cidr: aws.String(cidr),
		})
	}

	if _, err := c.ec2Client.ModifyManagedPrefixList(ctx, input); err != nil {
		return classify(err, fmt.Sprintf("modify managed prefix list %s at version %d", prefixListID, version))
	}
	return nil
}

func (c *Client) describePrefixList(ctx context.Context, prefixListID string) (*ec2types.ManagedPrefixList, error) {
	out, err := c.ec2Client.DescribeManagedPrefixLists(ctx, &ec2.DescribeManagedPrefixListsInput{
		PrefixListIds: []string{prefixListID},
	})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("describe managed prefix list %s", prefixListID))
	}
	if len(out.PrefixLists) == 0 {
		return nil, domain.Permanent(fmt.Errorf("managed prefix list %s not found", prefixListID))
	}
	return &out.PrefixLists[0], nil
}

func (c *Client) prefixListEntries(ctx context.Context, prefixListID string) ([]ec2types.PrefixListEntry, error) {
	input := &ec2.GetManagedPrefixListEntriesInput{
		PrefixListId: aws.String(prefixListID),
	}
	paginator := ec2.NewGetManagedPrefixListEntriesPaginator(c.ec2Client, input)
	entries, err := CollectPages(
		ctx,
		paginator.HasMorePages,
		func(ctx context.Context) (*ec2.GetManagedPrefixListEntriesOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *ec2.GetManagedPrefixListEntriesOutput) []ec2types.PrefixListEntry {
			return out.Entries
		},
	)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("get managed prefix list entries %s", prefixListID))
	}
	return entries, nil
}

// prefixListCapacity returns MaxEntries for a list, cached: the rule usage
// reader resolves every referenced list on every pass and capacities only
// change through support requests.
func (c *Client) prefixListCapacity(ctx context.Context, prefixListID string) (int, error) {
	key := "plcap:" + prefixListID
	if v, ok := c.quotaCache.get(key); ok {
		return v, nil
	}
	pl, err := c.describePrefixList(ctx, prefixListID)
	if err != nil {
		return 0, err
	}
	capacity := int(derefInt32(pl.MaxEntries))
	c.quotaCache.set(key, capacity)
	return capacity, nil
}
