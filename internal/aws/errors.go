package aws

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"github.com/gllesch/plsync/internal/domain"
)

// classify wraps a provider error with the failure class the engine keys on.
// Unknown provider errors come back transient: the state of the world is
// unknown and the next tick re-reads everything anyway.
func classify(err error, op string) error {
	wrapped := fmt.Errorf("%s: %w", op, err)

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case isNotFoundCode(code):
			return domain.Permanent(wrapped)
		case isConflictCode(code):
			return domain.Conflict(wrapped)
		}
	}
	return domain.Transient(wrapped)
}

func isNotFoundCode(code string) bool {
	switch code {
	case "InvalidGroup.NotFound",
		"InvalidGroupId.NotFound",
		"InvalidPrefixListID.NotFound",
		"InvalidPrefixListId.NotFound",
		"NoSuchResourceException":
		return true
	}
	return false
}

// Conflict codes cover both the explicit version mismatch and the state the
// list is left in while another modification is still applying.
func isConflictCode(code string) bool {
	switch code {
	case "PrefixListVersionMismatch",
		"IncorrectState",
		"ConcurrentMutationException":
		return true
	}
	return false
}
