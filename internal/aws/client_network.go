package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/gllesch/plsync/internal/domain"
)

// SecurityGroupAddresses returns the private addresses of every network
// interface currently associated with the security group, as single-host
// CIDRs. Read-only; reflects one point-in-time paginated describe.
func (c *Client) SecurityGroupAddresses(ctx context.Context, securityGroupID string) (domain.NetworkStateSnapshot, error) {
	input := &ec2.DescribeNetworkInterfacesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("group-id"), Values: []string{securityGroupID}},
		},
	}
	paginator := ec2.NewDescribeNetworkInterfacesPaginator(c.ec2Client, input)
	enis, err := CollectPages(
		ctx,
		paginator.HasMorePages,
		func(ctx context.Context) (*ec2.DescribeNetworkInterfacesOutput, error) {
			return paginator.NextPage(ctx)
		},
		func(out *ec2.DescribeNetworkInterfacesOutput) []ec2types.NetworkInterface {
			return out.NetworkInterfaces
		},
	)
	if err != nil {
		return domain.NetworkStateSnapshot{}, classify(err, fmt.Sprintf("describe network interfaces for sg %s", securityGroupID))
	}

	return domain.NetworkStateSnapshot{CIDRs: addressesFromInterfaces(enis)}, nil
}

// SecurityGroupRuleUsage reports how much of the per-direction rule quota the
// security group consumes today. The quota applies to inbound and outbound
// rules independently, so the heavier direction is the one that matters.
func (c *Client) SecurityGroupRuleUsage(ctx context.Context, securityGroupID string) (int, error) {
	out, err := c.ec2Client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		GroupIds: []string{securityGroupID},
	})
	if err != nil {
		return 0, classify(err, fmt.Sprintf("describe security group %s", securityGroupID))
	}
	if len(out.SecurityGroups) == 0 {
		return 0, domain.Permanent(fmt.Errorf("security group %s not found", securityGroupID))
	}

	sg := &out.SecurityGroups[0]
	capacityOf := func(prefixListID string) (int, error) {
		return c.prefixListCapacity(ctx, prefixListID)
	}

	inbound, err := directionWeight(sg.IpPermissions, capacityOf)
	if err != nil {
		return 0, err
	}
	outbound, err := directionWeight(sg.IpPermissionsEgress, capacityOf)
	if err != nil {
		return 0, err
	}
	if outbound > inbound {
		return outbound, nil
	}
	return inbound, nil
}

func directionWeight(perms []ec2types.IpPermission, capacityOf func(string) (int, error)) (int, error) {
	total := 0
	for _, perm := range perms {
		weight, err := ruleWeight(perm, capacityOf)
		if err != nil {
			return 0, err
		}
		total += weight
	}
	return total, nil
}
