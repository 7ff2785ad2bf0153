package slots

// TypedKey is a strongly-typed view of a Key, returned by Allocate so
// callers don't have to repeat the type argument (or a type assertion) at
// every Get/Set call site.
type TypedKey[T any] Key

// Allocate is the generic counterpart of Table.Allocate: factory, reset,
// and release all operate on T directly.
func Allocate[T any](t *Table, factory func() T, reset func(T) T, release func(T)) (TypedKey[T], error) {
	key, err := t.Allocate(
		func() any { return factory() },
		func(v any) any { return reset(v.(T)) },
		func(v any) { release(v.(T)) },
	)
	if err != nil {
		return 0, err
	}
	return TypedKey[T](key), nil
}

// Get returns the entity's typed value for key. It panics if the slot was
// allocated with a different type's Allocate call, which indicates a
// programming error (a TypedKey leaked across slot tables), not a runtime
// condition callers should handle.
func Get[T any](e *Entity, key TypedKey[T]) (T, bool) {
	v, ok := e.TryGet(Key(key))
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// SetTyped overwrites the entity's value for a typed key.
func SetTyped[T any](e *Entity, key TypedKey[T], v T) {
	e.Set(Key(key), v)
}

// Free frees a typed key on its owning table.
func Free[T any](t *Table, key TypedKey[T]) error {
	return t.Free(Key(key))
}
