package aws

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"

	"github.com/gllesch/plsync/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want domain.ErrorClass
	}{
		{
			name: "security group deleted",
			err:  &smithy.GenericAPIError{Code: "InvalidGroup.NotFound", Message: "does not exist"},
			want: domain.ClassPermanent,
		},
		{
			name: "prefix list deleted",
			err:  &smithy.GenericAPIError{Code: "InvalidPrefixListID.NotFound", Message: "does not exist"},
			want: domain.ClassPermanent,
		},
		{
			name: "quota code misconfigured",
			err:  &smithy.GenericAPIError{Code: "NoSuchResourceException", Message: "no such quota"},
			want: domain.ClassPermanent,
		},
		{
			name: "version mismatch",
			err:  &smithy.GenericAPIError{Code: "PrefixListVersionMismatch", Message: "stale version"},
			want: domain.ClassConflict,
		},
		{
			name: "list busy with concurrent modify",
			err:  &smithy.GenericAPIError{Code: "IncorrectState", Message: "modify in progress"},
			want: domain.ClassConflict,
		},
		{
			name: "throttled",
			err:  &smithy.GenericAPIError{Code: "RequestLimitExceeded", Message: "slow down"},
			want: domain.ClassTransient,
		},
		{
			name: "service unavailable",
			err:  &smithy.GenericAPIError{Code: "ServiceUnavailable", Message: "try later"},
			want: domain.ClassTransient,
		},
		{
			name: "plain network error",
			err:  errors.New("dial tcp: timeout"),
			want: domain.ClassTransient,
		},
		{
			name: "wrapped api error",
			err:  fmt.Errorf("operation: %w", &smithy.GenericAPIError{Code: "InvalidGroup.NotFound"}),
			want: domain.ClassPermanent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classify(tt.err, "test op")
			if got := domain.ClassOf(classified); got != tt.want {
				t.Errorf("ClassOf = %v, want %v", got, tt.want)
			}
			if !errors.Is(classified, tt.err) {
				t.Error("classified error must wrap the original")
			}
		})
	}
}
