package domain

import "fmt"

// Binding associates one security group with the managed prefix list that
// mirrors its interface addresses. The security group and the prefix list may
// live in different regions. Thresholds control when quota headroom warnings
// fire; a binding with both thresholds zero uses the configured defaults, and
// any other combination is taken verbatim (base 0 with a percent set is a
// deliberate "percent only" policy).
type Binding struct {
	SecurityGroupID     string
	SecurityGroupRegion string
	PrefixListID        string
	PrefixListRegion    string
	PercentThreshold    int
	BaseThreshold       int
}

// Key returns the registry key for the binding.
func (b Binding) Key() string {
	return b.SecurityGroupID
}

func (b Binding) Validate() error {
	if b.SecurityGroupID == "" {
		return fmt.Errorf("binding: security group id is required")
	}
	if b.SecurityGroupRegion == "" {
		return fmt.Errorf("binding %s: security group region is required", b.SecurityGroupID)
	}
	if b.PrefixListID == "" {
		return fmt.Errorf("binding %s: prefix list id is required", b.SecurityGroupID)
	}
	if b.PrefixListRegion == "" {
		return fmt.Errorf("binding %s: prefix list region is required", b.SecurityGroupID)
	}
	if b.PercentThreshold < 0 || b.PercentThreshold > 100 {
		return fmt.Errorf("binding %s: percent threshold must be within [0,100], got %d", b.SecurityGroupID, b.PercentThreshold)
	}
	if b.BaseThreshold < 0 {
		return fmt.Errorf("binding %s: base threshold must be non-negative, got %d", b.SecurityGroupID, b.BaseThreshold)
	}
	return nil
}
