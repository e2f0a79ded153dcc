package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/ratelimit"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/servicequotas"
)

// ec2API is the slice of the EC2 client the reconciler calls; tests substitute
// a fake. The SDK paginators accept it directly.
type ec2API interface {
	DescribeNetworkInterfaces(ctx context.Context, input *ec2.DescribeNetworkInterfacesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNetworkInterfacesOutput, error)
	DescribeSecurityGroups(ctx context.Context, input *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeManagedPrefixLists(ctx context.Context, input *ec2.DescribeManagedPrefixListsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeManagedPrefixListsOutput, error)
	GetManagedPrefixListEntries(ctx context.Context, input *ec2.GetManagedPrefixListEntriesInput, optFns ...func(*ec2.Options)) (*ec2.GetManagedPrefixListEntriesOutput, error)
	ModifyManagedPrefixList(ctx context.Context, input *ec2.ModifyManagedPrefixListInput, optFns ...func(*ec2.Options)) (*ec2.ModifyManagedPrefixListOutput, error)
}

// Client bundles the regional service clients one binding side needs: EC2 for
// interfaces, security groups and prefix lists, Service Quotas for the rule
// quota lookup.
type Client struct {
	ec2Client   ec2API
	quotaClient *servicequotas.Client
	region      string
	quotaCache  *ttlCache
}

func newRetryer() aws.Retryer {
	return retry.NewStandard(func(o *retry.StandardOptions) {
		o.MaxAttempts = 5
		o.MaxBackoff = 30 * time.Second
		o.Backoff = retry.NewExponentialJitterBackoff(o.MaxBackoff)
		o.RateLimiter = ratelimit.None
	})
}

func NewClient(cfg aws.Config, region string) *Client {
	regional := cfg.Copy()
	regional.Region = region
	retryer := newRetryer()
	return &Client{
		ec2Client:   ec2.NewFromConfig(regional, func(o *ec2.Options) { o.Retryer = retryer }),
		quotaClient: servicequotas.NewFromConfig(regional, func(o *servicequotas.Options) { o.Retryer = retryer }),
		region:      region,
		quotaCache:  newTTLCache(10 * time.Minute),
	}
}

func (c *Client) Region() string {
	return c.region
}
