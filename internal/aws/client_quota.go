package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/servicequotas"
)

// AppliedQuota returns the applied value of one service quota, cached with a
// TTL since quota increases land at human timescales.
func (c *Client) AppliedQuota(ctx context.Context, serviceCode, quotaCode string) (int, error) {
	key := "quota:" + serviceCode + ":" + quotaCode
	if v, ok := c.quotaCache.get(key); ok {
		return v, nil
	}

	out, err := c.quotaClient.GetServiceQuota(ctx, &servicequotas.GetServiceQuotaInput{
		ServiceCode: aws.String(serviceCode),
		QuotaCode:   aws.String(quotaCode),
	})
	if err != nil {
		return 0, classify(err, fmt.Sprintf("get service quota %s/%s", serviceCode, quotaCode))
	}
	if out.Quota == nil || out.Quota.Value == nil {
		return 0, classify(fmt.Errorf("quota %s/%s has no value", serviceCode, quotaCode), "get service quota")
	}

	value := int(*out.Quota.Value)
	c.quotaCache.set(key, value)
	return value, nil
}
