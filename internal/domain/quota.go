package domain

// QuotaResource names one of the two quotas tracked per binding.
type QuotaResource string

const (
	QuotaSecurityGroupRules QuotaResource = "security-group-rules"
	QuotaPrefixListCapacity QuotaResource = "prefix-list-capacity"
)

// QuotaStatus is the derived headroom of one quota. Headroom may be negative
// when the projected usage already exceeds the limit.
type QuotaStatus struct {
	Resource     QuotaResource
	CurrentCount int
	Limit        int
	Headroom     int
	Warning      bool
}
