package validation

import (
	"strings"

	"github.com/marsone/crew-api/internal/core/domain"
)

// valuePtr returns a pointer to o's value, or nil when o is absent or null.
func valuePtr[T any](o domain.Optional[T]) *T {
	v, ok := o.Value()
	if !ok {
		return nil
	}
	return &v
}

func trimmed(o domain.Optional[string]) domain.Optional[string] {
	if v, ok := o.Value(); ok {
		return domain.Some(strings.TrimSpace(v))
	}
	return o
}

func narrow(o domain.Optional[int64]) domain.Optional[int] {
	switch {
	case !o.Present():
		return domain.Optional[int]{}
	case o.IsNull():
		return domain.Null[int]()
	}
	v, _ := o.Value()
	return domain.Some(int(v))
}
