package stream

import (
	"reflect"
	"sync"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Register registers l on the default registry.
func Register(l Stream, channels ...reflect.Type) ([]reflect.Type, error) {
	return Default().Register(l, channels...)
}

// Unregister unregisters l from the default registry.
func Unregister(l Stream, channels ...reflect.Type) ([]reflect.Type, error) {
	return Default().Unregister(l, channels...)
}

// SetDebug toggles debug tracing on the default registry.
func SetDebug(enabled bool) {
	Default().SetDebug(enabled)
}

// Build builds a proxy for T on the default registry.
func Build[T Stream](opts ...ProxyOption) (T, error) {
	return NewProxy[T](Default(), opts...)
}

// MustBuild is like Build but panics on error.
func MustBuild[T Stream](opts ...ProxyOption) T {
	return MustProxy[T](Default(), opts...)
}
