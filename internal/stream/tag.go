package stream

import (
	"math"
	"reflect"
)

// Match reports whether a proxy bound to proxyTag reaches a listener that
// reports listenerTag.
//
// Tags match when they are the same value (pointer identity included) or, for
// non-comparable values, deeply equal. Two NaN floats of the same type
// match. A nil proxy tag only matches a nil listener tag; it is not a
// wildcard.
func Match(proxyTag, listenerTag any) bool {
	if proxyTag == nil || listenerTag == nil {
		return proxyTag == nil && listenerTag == nil
	}

	pt := reflect.TypeOf(proxyTag)
	if pt != reflect.TypeOf(listenerTag) {
		return false
	}
	if pt.Comparable() {
		// Interface comparison still panics for comparable struct or array
		// types holding non-comparable interface values.
		if eq, ok := safeEqual(proxyTag, listenerTag); ok {
			return eq || bothNaN(proxyTag, listenerTag)
		}
	}
	return reflect.DeepEqual(proxyTag, listenerTag)
}

func safeEqual(a, b any) (eq bool, ok bool) {
	defer func() {
		if recover() != nil {
			eq, ok = false, false
		}
	}()
	return a == b, true
}

func bothNaN(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Float32, reflect.Float64:
		return math.IsNaN(va.Float()) && math.IsNaN(vb.Float())
	}
	return false
}
