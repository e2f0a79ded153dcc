package aws

import (
	"errors"
	"reflect"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

func TestAddressesFromInterfaces(t *testing.T) {
	enis := []ec2types.NetworkInterface{
		{
			PrivateIpAddress: awssdk.String("10.0.1.5"),
			PrivateIpAddresses: []ec2types.NetworkInterfacePrivateIpAddress{
				{PrivateIpAddress: awssdk.String("10.0.1.5")},
				{PrivateIpAddress: awssdk.String("10.0.1.7")},
			},
		},
		{
			PrivateIpAddress: awssdk.String("10.0.1.6"),
		},
		{
			// Same address on a second interface must not duplicate.
			PrivateIpAddress: awssdk.String("10.0.1.6"),
		},
	}

	got := addressesFromInterfaces(enis)
	want := []string{"10.0.1.5/32", "10.0.1.6/32", "10.0.1.7/32"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("addressesFromInterfaces = %v, want %v", got, want)
	}
}

func TestAddressesFromInterfaces_Empty(t *testing.T) {
	if got := addressesFromInterfaces(nil); len(got) != 0 {
		t.Errorf("expected no addresses, got %v", got)
	}
}

func TestRuleWeight(t *testing.T) {
	capacities := map[string]int{"pl-big": 25}
	capacityOf := func(plID string) (int, error) {
		if c, ok := capacities[plID]; ok {
			return c, nil
		}
		return 0, errors.New("unknown prefix list")
	}

	perm := ec2types.IpPermission{
		IpRanges: []ec2types.IpRange{
			{CidrIp: awssdk.String("10.0.0.0/8")},
			{CidrIp: awssdk.String("192.168.0.0/16")},
		},
		Ipv6Ranges: []ec2types.Ipv6Range{
			{CidrIpv6: awssdk.String("::/0")},
		},
		UserIdGroupPairs: []ec2types.UserIdGroupPair{
			{GroupId: awssdk.String("sg-other")},
		},
		PrefixListIds: []ec2types.PrefixListId{
			{PrefixListId: awssdk.String("pl-big")},
		},
	}

	got, err := ruleWeight(perm, capacityOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 2 v4 + 1 v6 + 1 group reference + the referenced list's capacity.
	if got != 29 {
		t.Errorf("ruleWeight = %d, want 29", got)
	}
}

func TestRuleWeight_CapacityLookupError(t *testing.T) {
	perm := ec2types.IpPermission{
		PrefixListIds: []ec2types.PrefixListId{
			{PrefixListId: awssdk.String("pl-missing")},
		},
	}
	_, err := ruleWeight(perm, func(string) (int, error) {
		return 0, errors.New("lookup failed")
	})
	if err == nil {
		t.Fatal("expected error from capacity lookup")
	}
}

func TestToListEntries(t *testing.T) {
	entries := []ec2types.PrefixListEntry{
		{Cidr: awssdk.String("10.0.1.5/32"), Description: awssdk.String("plsync:sg-123")},
		{Cidr: awssdk.String("10.0.1.6/32")},
	}
	got := toListEntries(entries)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].CIDR != "10.0.1.5/32" || got[0].Description != "plsync:sg-123" {
		t.Errorf("entry[0] = %+v", got[0])
	}
	if got[1].CIDR != "10.0.1.6/32" || got[1].Description != "" {
		t.Errorf("entry[1] = %+v", got[1])
	}
}
