package errors

import (
	"strings"
)

// Errors is an ordered list of non-nil errors. Use Err to turn it into an
// error value, which is nil when the list is empty.
type Errors []error

// Error joins the messages of the underlying errors, one per line.
func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Err returns nil for an empty list and the list itself otherwise.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Append adds err to errs, flattening nested lists. Nil errors are dropped.
func Append(errs Errors, err error) Errors {
	switch err := err.(type) {
	case nil:
		return errs
	case Errors:
		return append(errs, err...)
	default:
		return append(errs, err)
	}
}

// Combine combines errors e & f into a single error
func Combine(e, f error) error {
	var errs Errors
	errs = Append(errs, e)
	errs = Append(errs, f)
	if len(errs) == 1 {
		return errs[0]
	}
	return errs.Err()
}

// Defer is a helper for deferring error-returning functions such as Close
func Defer(err *error, f func() error) {
	*err = Combine(*err, f())
}
