package stream

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Stream is the marker every channel interface embeds.
//
// StreamTag reports the listener's tag for the given channel. A proxy only
// reaches listeners whose tag matches its own (see Match). Listeners with no
// tag embed Untagged.
type Stream interface {
	StreamTag(channel reflect.Type) any
}

// Untagged reports a nil tag for every channel.
type Untagged struct{}

// StreamTag implements Stream.
func (Untagged) StreamTag(reflect.Type) any { return nil }

// Tagged reports the same tag for every channel.
type Tagged struct {
	Tag any
}

// StreamTag implements Stream.
func (t Tagged) StreamTag(reflect.Type) any { return t.Tag }

var streamType = reflect.TypeFor[Stream]()

const tagMethod = "StreamTag"

// ChannelOf returns the channel identity of T.
func ChannelOf[T Stream]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Declare adds T to the channel catalog so listeners registered without
// explicit channels are resolved against it. Generated proxies declare their
// channel on init; Declare is for channels that have none linked in.
func Declare[T Stream]() (reflect.Type, error) {
	ch := reflect.TypeFor[T]()
	if err := validateChannel(ch); err != nil {
		return nil, err
	}
	known.add(ch)
	return ch, nil
}

func validateChannel(ch reflect.Type) error {
	if ch == nil {
		return ErrNilChannel
	}
	if ch == streamType {
		return fmt.Errorf("%w: %s", ErrMarkerChannel, ch)
	}
	if ch.Kind() != reflect.Interface {
		return fmt.Errorf("%w: %s is not an interface", ErrInvalidChannel, ch)
	}
	if !ch.Implements(streamType) {
		return fmt.Errorf("%w: %s does not embed stream.Stream", ErrInvalidChannel, ch)
	}
	for i := 0; i < ch.NumMethod(); i++ {
		if m := ch.Method(i); !m.IsExported() {
			return fmt.Errorf("%w: %s has unexported method %s", ErrInvalidChannel, ch, m.Name)
		}
	}
	return nil
}

// catalog holds every channel type the process has seen. It is type
// metadata, shared by all registries.
type catalog struct {
	mu    sync.RWMutex
	types map[reflect.Type]struct{}
}

var known = &catalog{types: make(map[reflect.Type]struct{})}

func (c *catalog) add(ch reflect.Type) {
	c.mu.Lock()
	c.types[ch] = struct{}{}
	c.mu.Unlock()
}

// implementedBy returns the catalogued channels t implements, sorted by name.
func (c *catalog) implementedBy(t reflect.Type) []reflect.Type {
	c.mu.RLock()
	var found []reflect.Type
	for ch := range c.types {
		if t.Implements(ch) {
			found = append(found, ch)
		}
	}
	c.mu.RUnlock()

	sort.Slice(found, func(i, j int) bool {
		return found[i].String() < found[j].String()
	})
	return found
}
