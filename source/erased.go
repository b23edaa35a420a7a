package source

// Erased is the type-erased view of a Source consumed by the engine.
// Element values travel as `any` through slot state; the typed parameter
// handle recovers the concrete type at the read boundary.
type Erased struct {
	iterate func() ErasedIterator
}

// ErasedIterator is a type-erased cursor.
type ErasedIterator interface {
	Next() (any, bool)
}

// Erase converts a typed Source into its engine-facing erased form.
func Erase[T any](s Source[T]) Erased {
	return Erased{iterate: func() ErasedIterator {
		return erasedIterator[T]{it: s.Iterate()}
	}}
}

// Iterate returns a fresh erased cursor. The zero Erased has no source and
// must not be iterated.
func (e Erased) Iterate() ErasedIterator {
	return e.iterate()
}

// IsZero reports whether e holds no source.
func (e Erased) IsZero() bool {
	return e.iterate == nil
}

type erasedIterator[T any] struct {
	it Iterator[T]
}

func (e erasedIterator[T]) Next() (any, bool) {
	v, ok := e.it.Next()
	if !ok {
		return nil, false
	}
	return v, true
}
