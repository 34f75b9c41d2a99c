package domain

// Optional is a patch field with three states: absent, explicitly null, or set
// to a value. The zero value is absent.
type Optional[T any] struct {
	present bool
	null    bool
	value   T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{present: true, value: v}
}

// Null returns an Optional that is present but explicitly null.
func Null[T any]() Optional[T] {
	return Optional[T]{present: true, null: true}
}

// Present reports whether the field was supplied at all, null included.
func (o Optional[T]) Present() bool { return o.present }

// IsNull reports whether the field was supplied as null.
func (o Optional[T]) IsNull() bool { return o.present && o.null }

// Value returns the held value and whether one is set.
func (o Optional[T]) Value() (T, bool) {
	return o.value, o.present && !o.null
}

// Ptr returns nil for null and a pointer to the value otherwise. Callers must
// check Present first.
func (o Optional[T]) Ptr() *T {
	if o.null {
		return nil
	}
	v := o.value
	return &v
}
