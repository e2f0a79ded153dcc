package domain

// NetworkStateSnapshot is the desired state for one binding: the deduplicated
// set of private addresses attached to the security group, each expressed as a
// single-host CIDR. Recomputed from scratch on every reconciliation.
type NetworkStateSnapshot struct {
	CIDRs []string
}

// PrefixListEntry is one CIDR in a managed prefix list.
type PrefixListEntry struct {
	CIDR        string
	Description string
}

// ListStateSnapshot is the actual state of a managed prefix list at a single
// point in time. Version is the optimistic-concurrency token; a modify call
// carrying a stale version is rejected by the provider.
type ListStateSnapshot struct {
	Entries    []PrefixListEntry
	Version    int64
	MaxEntries int
}

// CIDRSet returns the entry CIDRs as a set.
func (s ListStateSnapshot) CIDRSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Entries))
	for _, e := range s.Entries {
		set[e.CIDR] = struct{}{}
	}
	return set
}
