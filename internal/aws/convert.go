package aws

import (
	"fmt"
	"sort"

	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/gllesch/plsync/internal/domain"
)

// addressesFromInterfaces flattens every private address (primary and
// secondary) of the given interfaces into a sorted, deduplicated set of
// single-host CIDRs.
func addressesFromInterfaces(enis []ec2types.NetworkInterface) []string {
	seen := make(map[string]struct{})
	for _, eni := range enis {
		if ip := derefString(eni.PrivateIpAddress); ip != "" {
			seen[hostCIDR(ip)] = struct{}{}
		}
		for _, addr := range eni.PrivateIpAddresses {
			if ip := derefString(addr.PrivateIpAddress); ip != "" {
				seen[hostCIDR(ip)] = struct{}{}
			}
		}
	}

	cidrs := make([]string, 0, len(seen))
	for cidr := range seen {
		cidrs = append(cidrs, cidr)
	}
	sort.Strings(cidrs)
	return cidrs
}

func hostCIDR(ip string) string {
	return fmt.Sprintf("%s/32", ip)
}

func toListEntries(entries []ec2types.PrefixListEntry) []domain.PrefixListEntry {
	var result []domain.PrefixListEntry
	for _, e := range entries {
		result = append(result, domain.PrefixListEntry{
			CIDR:        derefString(e.Cidr),
			Description: derefString(e.Description),
		})
	}
	return result
}

// ruleWeight counts how much rule quota one permission consumes. Plain CIDR
// ranges and group references cost one rule each; a referenced prefix list
// costs that list's full capacity.
func ruleWeight(perm ec2types.IpPermission, capacityOf func(prefixListID string) (int, error)) (int, error) {
	weight := len(perm.IpRanges) + len(perm.Ipv6Ranges) + len(perm.UserIdGroupPairs)
	for _, pl := range perm.PrefixListIds {
		plID := derefString(pl.PrefixListId)
		if plID == "" {
			continue
		}
		capacity, err := capacityOf(plID)
		if err != nil {
			return 0, err
		}
		weight += capacity
	}
	return weight, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt32(i *int32) int32 {
	if i == nil {
		return 0
	}
	return *i
}

func derefInt64(i *int64) int64 {
	if i == nil {
		return 0
	}
	return *i
}
