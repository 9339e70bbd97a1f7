package stream

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/neoclaw-ai/stream/internal/logging"
)

type channelMap = map[reflect.Type]*listenerList

// listenerList is one channel's listeners. The slice behind items is never
// mutated after it is published, so dispatch iterates a stable snapshot.
type listenerList struct {
	items atomic.Pointer[[]Stream]
}

func (l *listenerList) load() []Stream {
	if p := l.items.Load(); p != nil {
		return *p
	}
	return nil
}

// Registry maps channels to their registered listeners.
//
// Register and Unregister are serialized; dispatch is lock-free and sees the
// listener list as it was when the call looked it up.
type Registry struct {
	mu       sync.Mutex
	channels atomic.Pointer[channelMap]

	debug  atomic.Bool
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for debug tracing. Without it the registry
// follows the process logger, even when that is reconfigured later.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDebug enables debug tracing from construction.
func WithDebug(enabled bool) Option {
	return func(r *Registry) {
		r.debug.Store(enabled)
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{}
	empty := make(channelMap)
	r.channels.Store(&empty)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetDebug toggles debug tracing of registration and dispatch.
func (r *Registry) SetDebug(enabled bool) {
	r.debug.Store(enabled)
}

// Debug reports whether debug tracing is on.
func (r *Registry) Debug() bool {
	return r.debug.Load()
}

// Register adds l to each channel and returns the channels it resolved.
//
// With no explicit channels every catalogued channel l implements is used.
// Registering a listener twice on the same channel is a no-op.
func (r *Registry) Register(l Stream, channels ...reflect.Type) ([]reflect.Type, error) {
	resolved, err := r.resolve(l, channels)
	if err != nil {
		return nil, err
	}

	changes := r.register(l, resolved)
	r.traceChanges("register", l, changes)
	return resolved, nil
}

// change records one channel whose list a mutation replaced.
type change struct {
	channel reflect.Type
	count   int
}

func (r *Registry) register(l Stream, resolved []reflect.Type) []change {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changes []change
	for _, ch := range resolved {
		m := *r.channels.Load()
		list, ok := m[ch]
		if !ok {
			list = &listenerList{}
			next := cloneMap(m, len(m)+1)
			next[ch] = list
			r.channels.Store(&next)
		}

		current := list.load()
		if indexOf(current, l) >= 0 {
			continue
		}
		next := make([]Stream, len(current), len(current)+1)
		copy(next, current)
		next = append(next, l)
		list.items.Store(&next)
		changes = append(changes, change{channel: ch, count: len(next)})
	}
	return changes
}

// Unregister removes l from each channel and returns the channels it
// resolved. A channel left with no listeners is dropped.
func (r *Registry) Unregister(l Stream, channels ...reflect.Type) ([]reflect.Type, error) {
	resolved, err := r.resolve(l, channels)
	if err != nil {
		return nil, err
	}

	changes := r.unregister(l, resolved)
	r.traceChanges("unregister", l, changes)
	return resolved, nil
}

func (r *Registry) unregister(l Stream, resolved []reflect.Type) []change {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changes []change
	for _, ch := range resolved {
		m := *r.channels.Load()
		list, ok := m[ch]
		if !ok {
			continue
		}

		current := list.load()
		i := indexOf(current, l)
		if i < 0 {
			continue
		}
		next := make([]Stream, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		changes = append(changes, change{channel: ch, count: len(next)})

		if len(next) == 0 {
			trimmed := cloneMap(m, len(m))
			delete(trimmed, ch)
			r.channels.Store(&trimmed)
		}
		list.items.Store(&next)
	}
	return changes
}

// traceChanges runs outside r.mu: StreamTag is listener code and may
// register or unregister itself.
func (r *Registry) traceChanges(op string, l Stream, changes []change) {
	if !r.Debug() {
		return
	}
	for _, c := range changes {
		r.trace(op,
			slog.String("listener", describe(l)),
			slog.String("channel", c.channel.String()),
			slog.Any("tag", l.StreamTag(c.channel)),
			slog.Int("count", c.count))
	}
}

// Channels returns the channels that currently have listeners.
func (r *Registry) Channels() []reflect.Type {
	m := *r.channels.Load()
	out := make([]reflect.Type, 0, len(m))
	for ch := range m {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// Listeners returns a copy of the listeners registered on ch, in dispatch order.
func (r *Registry) Listeners(ch reflect.Type) []Stream {
	current := r.snapshot(ch)
	if len(current) == 0 {
		return nil
	}
	out := make([]Stream, len(current))
	copy(out, current)
	return out
}

func (r *Registry) snapshot(ch reflect.Type) []Stream {
	list, ok := (*r.channels.Load())[ch]
	if !ok {
		return nil
	}
	return list.load()
}

func (r *Registry) resolve(l Stream, explicit []reflect.Type) ([]reflect.Type, error) {
	if l == nil {
		return nil, ErrNilListener
	}
	if _, ok := l.(proxied); ok {
		return nil, fmt.Errorf("%w: %s", ErrProxyListener, describe(l))
	}
	lt := reflect.TypeOf(l)
	if !lt.Comparable() {
		return nil, fmt.Errorf("%w: %s", ErrUncomparableListener, lt)
	}

	if len(explicit) == 0 {
		found := known.implementedBy(lt)
		if len(found) == 0 && r.Debug() {
			r.log().Warn("no stream channel implemented by listener", "listener", describe(l))
		}
		return found, nil
	}

	out := make([]reflect.Type, 0, len(explicit))
	seen := make(map[reflect.Type]struct{}, len(explicit))
	for _, ch := range explicit {
		if err := validateChannel(ch); err != nil {
			return nil, err
		}
		if !lt.Implements(ch) {
			return nil, fmt.Errorf("%w: %s does not implement %s", ErrChannelNotImplemented, lt, ch)
		}
		if _, dup := seen[ch]; dup {
			continue
		}
		seen[ch] = struct{}{}
		known.add(ch)
		out = append(out, ch)
	}
	return out, nil
}

func (r *Registry) trace(msg string, attrs ...slog.Attr) {
	if !r.debug.Load() {
		return
	}
	r.log().LogAttrs(context.Background(), slog.LevelInfo, "stream "+msg, attrs...)
}

func (r *Registry) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logging.Logger()
}

func cloneMap(m channelMap, size int) channelMap {
	next := make(channelMap, size)
	for k, v := range m {
		next[k] = v
	}
	return next
}

func indexOf(list []Stream, l Stream) int {
	for i, item := range list {
		if eq, ok := safeEqual(item, l); ok && eq {
			return i
		}
	}
	return -1
}

func describe(l any) string {
	v := reflect.ValueOf(l)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return fmt.Sprintf("%T@%#x", l, v.Pointer())
	}
	return fmt.Sprintf("%T", l)
}
