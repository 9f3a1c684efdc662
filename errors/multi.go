package errors

import (
	"strings"
)

// multiErrCode is the ABCI code of an error that groups together many other
// errors. The code of the first error in the group takes precedence when it
// is available.
const multiErrCode uint32 = 100

// Append clubs together all provided errors. Nil values are skipped and
// grouped errors are flattened.
//
// Use this function to collect all issues found during a validation instead
// of returning on the first failure.
func Append(errs ...error) error {
	var res multiErr
	for _, err := range errs {
		if isNilErr(err) {
			continue
		}
		if m, ok := err.(multiErr); ok {
			res = append(res, m...)
			continue
		}
		res = append(res, err)
	}
	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr is a collection of errors that is an error itself.
type multiErr []error

func (m multiErr) Error() string {
	msgs := make([]string, len(m))
	for i, e := range m {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// ABCICode returns the code of the first error that declares one.
func (m multiErr) ABCICode() uint32 {
	for _, e := range m {
		if code := abciCode(e); code != internalABCICode {
			return code
		}
	}
	return multiErrCode
}

// Unpack implements the unpacker interface.
func (m multiErr) Unpack() []error {
	return []error(m)
}
