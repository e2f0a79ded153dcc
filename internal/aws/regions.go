package aws

import (
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ClientPool hands out one Client per region. A binding's security group and
// prefix list may live in different regions, so one reconciliation can touch
// two pool entries.
type ClientPool struct {
	baseConfig aws.Config
	mu         sync.RWMutex
	clients    map[string]*Client
}

func NewClientPool(cfg aws.Config) *ClientPool {
	return &ClientPool{
		baseConfig: cfg,
		clients:    make(map[string]*Client),
	}
}

// ForRegion returns the cached client for region, creating it on first use.
func (p *ClientPool) ForRegion(region string) *Client {
	if region == "" {
		region = p.baseConfig.Region
	}

	p.mu.RLock()
	client, ok := p.clients[region]
	p.mu.RUnlock()
	if ok {
		return client
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if client, ok := p.clients[region]; ok {
		return client
	}
	client = NewClient(p.baseConfig, region)
	p.clients[region] = client
	return client
}
