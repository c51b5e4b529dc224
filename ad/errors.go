package ad

import (
	"fmt"
	"reflect"
)

// UnsupportedTypeError is reported when a value's type has no
// registered box. It surfaces from MakeVJP when a primitive inside
// the traced function produces such a value.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("ad: no box registered for type %v", e.Type)
}

// MissingVJPError is reported by the VJP closure when the backward
// pass requests a rule that was never registered.
type MissingVJPError struct {
	Prim   *Primitive
	Argnum int
}

func (e *MissingVJPError) Error() string {
	return fmt.Sprintf("ad: no VJP registered for primitive %v, argument %d",
		e.Prim, e.Argnum)
}
