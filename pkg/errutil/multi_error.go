// Package errutil contains common error utilities.
package errutil

import "strings"

// Multi combines multiple errors into one. If all errors are nil it returns
// nil, and if exactly one error is non-nil that error is returned unchanged.
// Otherwise the result is an error whose message contains the messages of all
// non-nil arguments. Errors previously combined by Multi are flattened.
func Multi(errs ...error) error {
	var all multiError
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case multiError:
			all = append(all, err...)
		default:
			all = append(all, err)
		}
	}
	switch len(all) {
	case 0:
		return nil
	case 1:
		return all[0]
	}
	return all
}

type multiError []error

func (me multiError) Error() string {
	msgs := make([]string, len(me))
	for i, err := range me {
		msgs[i] = err.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}
