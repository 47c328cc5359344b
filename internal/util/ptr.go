package util

// Ptr returns a pointer to a copy of v, so the caller's variable or slice
// element is never aliased.
func Ptr[T any](v T) *T { return &v }
