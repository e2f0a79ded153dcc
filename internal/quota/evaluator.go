// Package quota computes headroom against a resource limit and decides when
// to warn. The check combines two independent thresholds: an absolute floor
// (a fixed percentage is too loose for small quotas) and a proportional floor
// (a fixed count is too tight for large ones). Either breach trips the
// warning.
package quota

import (
	"math"

	"github.com/gllesch/plsync/internal/domain"
)

// Evaluate is a pure function: no I/O, no side effects.
func Evaluate(resource domain.QuotaResource, currentCount, limit, baseThreshold, percentThreshold int) domain.QuotaStatus {
	headroom := limit - currentCount
	percentFloor := int(math.Ceil(float64(limit) * float64(percentThreshold) / 100))

	return domain.QuotaStatus{
		Resource:     resource,
		CurrentCount: currentCount,
		Limit:        limit,
		Headroom:     headroom,
		Warning:      headroom <= baseThreshold || headroom <= percentFloor,
	}
}
