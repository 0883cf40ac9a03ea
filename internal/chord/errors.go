package chord

import "fmt"

// ServiceError is the single service-level error kind NodeService
// returns. find_successor and stabilize propagate it; notify,
// check_predecessor and fix_fingers return no error at all (spec §7) —
// they are maintenance and must never surface a failure to a caller.
// Of the three, only fix_fingers logs the failures it swallows.
type ServiceError struct {
	msg string
	err error
}

func (e *ServiceError) Error() string {
	return e.msg
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// NewServiceError wraps cause with context, matching the teacher's
// `fmt.Errorf("...: %w", err)` idiom (chord/node.go's Join).
func NewServiceError(context string, cause error) *ServiceError {
	return &ServiceError{msg: fmt.Sprintf("%s: %s", context, cause), err: cause}
}
