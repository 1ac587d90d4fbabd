package services

import (
	"fmt"

	"github.com/dmitrijs2005/datingapp/internal/common"
)

// Reasons carried by ForbiddenError.
const (
	ReasonSelfDelete       = "self-delete"
	ReasonProtectedAccount = "protected-account"
)

// ForbiddenError is a guardrail violation. It matches common.ErrForbidden.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

func (e *ForbiddenError) Is(target error) bool {
	return target == common.ErrForbidden
}

// OperationFailedError reports the deletion step that failed. It matches
// common.ErrOperationFailed and unwraps to the underlying cause.
type OperationFailedError struct {
	Step string
	Err  error
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("operation failed at step %s: %v", e.Step, e.Err)
}

func (e *OperationFailedError) Unwrap() []error {
	return []error{common.ErrOperationFailed, e.Err}
}
