// Package assert holds the few assertions that most tests need, without
// the output noise of a full assertion library.
package assert

import (
	"reflect"
	"testing"

	"github.com/iov-one/tradeweave/errors"
)

// Tester is the part of testing.TB used by the assertions.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails unless value is nil or a nil pointer, slice, map or similar.
// Errors are printed with %+v to include their stack trace.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// Equal compares using reflect.DeepEqual.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal \nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails unless fn panics.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// FieldError checks the errors reported for a single field of a
// validation error. A nil want means the field must have no error,
// otherwise exactly one error matching want is expected.
func FieldError(t testing.TB, err error, field string, want *errors.Error) {
	t.Helper()
	errs := errors.FieldErrors(err, field)
	for i, e := range errs {
		t.Logf("%s error %d: %q", field, i+1, e)
	}
	switch {
	case want == nil && len(errs) != 0:
		t.Fatalf("want no %s error, got %d", field, len(errs))
	case want == nil:
	case len(errs) != 1:
		t.Fatalf("want one %s error, got %d", field, len(errs))
	case !want.Is(errs[0]):
		t.Fatalf("want %s error %q, got %q", field, want, errs[0])
	}
}

// IsErr fails unless got is want or want.Is(got) holds.
func IsErr(t testing.TB, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if cmp, ok := want.(interface{ Is(error) bool }); ok && cmp.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
