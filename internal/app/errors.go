package app

import "fmt"

// RuleError is a user-facing rejection of an action that is illegal in
// the current room state. It is never fatal and a rejected action leaves
// the room untouched.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string { return e.Reason }

// reject builds a RuleError with a formatted reason.
func reject(format string, args ...any) error {
	return &RuleError{Reason: fmt.Sprintf(format, args...)}
}
