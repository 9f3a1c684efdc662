package errors

import "fmt"

// Field attributes err to a single field of a validated structure. It
// returns nil for a nil err, so validation code can call it
// unconditionally. Description may hold format verbs for args.
//
// Field names follow Go naming. Nested fields use dots and slice
// elements their index, for example ReceiveAmount.Ticker or Coins.0.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: withStack(err), field: name, desc: description}
}

// AppendField adds the field error of name to errs. Nothing is added when
// fieldErr is nil.
func AppendField(errs error, name string, fieldErr error) error {
	return Append(errs, Field(name, fieldErr, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc == "" {
		return fmt.Sprintf("field %q: %s", e.field, e.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
}

func (e *fieldError) Cause() error {
	return e.parent
}

func (e *fieldError) Field() string {
	return e.field
}

// FieldErrors collects the errors attributed to the named field anywhere
// in err, looking through wrapping and multi errors.
func FieldErrors(err error, name string) []error {
	for !isNilErr(err) {
		if f, ok := err.(*fieldError); ok && f.field == name {
			return []error{err}
		}
		if u, ok := err.(unpacker); ok {
			var found []error
			for _, e := range u.Unpack() {
				found = append(found, FieldErrors(e, name)...)
			}
			return found
		}
		c, ok := err.(causer)
		if !ok {
			return nil
		}
		err = c.Cause()
	}
	return nil
}
