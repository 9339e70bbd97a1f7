package stream

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
)

// proxied is satisfied only by values embedding *Proxy.
type proxied interface {
	isProxy()
}

// Proxy carries the bindings of one channel proxy: the registry it
// dispatches through, the channel, the tag and the optional dispatch func.
//
// Generated proxy types embed *Proxy and forward each channel method to
// Invoke. A Proxy is immutable once built and safe for concurrent use.
type Proxy struct {
	registry *Registry
	channel  reflect.Type
	tag      any
	dispatch DispatchFunc
	override bool
}

func (*Proxy) isProxy() {}

// StreamTag panics: tags are only meaningful on listeners.
func (*Proxy) StreamTag(reflect.Type) any {
	panic(ErrProxyTagAccess)
}

// Channel returns the channel the proxy broadcasts on.
func (p *Proxy) Channel() reflect.Type { return p.channel }

// Tag returns the tag the proxy was built with.
func (p *Proxy) Tag() any { return p.tag }

// ProxyOption configures a proxy at build time.
type ProxyOption func(*Proxy)

// WithTag binds the proxy to tag. Without it the proxy only reaches listeners
// that report a nil tag.
func WithTag(tag any) ProxyOption {
	return func(p *Proxy) {
		p.tag = tag
	}
}

// WithDispatchFunc installs fn, called after every matched listener. Returning
// true stops the broadcast.
func WithDispatchFunc(fn DispatchFunc) ProxyOption {
	return func(p *Proxy) {
		p.dispatch = fn
	}
}

// WithResultOverride lets a listener implementing ResultRequester claim the
// call's result in place of the last matched listener.
func WithResultOverride() ProxyOption {
	return func(p *Proxy) {
		p.override = true
	}
}

var factories = struct {
	mu sync.RWMutex
	m  map[reflect.Type]func(*Proxy) Stream
}{m: make(map[reflect.Type]func(*Proxy) Stream)}

// RegisterProxy makes factory the proxy constructor for channel T and adds T
// to the channel catalog. Generated code calls it from init; it panics when T
// is not a valid channel.
func RegisterProxy[T Stream](factory func(*Proxy) T) {
	ch := reflect.TypeFor[T]()
	if err := validateChannel(ch); err != nil {
		panic(err)
	}
	if factory == nil {
		panic(fmt.Sprintf("stream: nil proxy factory for %s", ch))
	}

	factories.mu.Lock()
	factories.m[ch] = func(p *Proxy) Stream { return factory(p) }
	factories.mu.Unlock()

	known.add(ch)
}

// NewProxy builds a proxy for channel T dispatching through r. A nil r means
// the default registry.
func NewProxy[T Stream](r *Registry, opts ...ProxyOption) (T, error) {
	var zero T
	if r == nil {
		r = Default()
	}
	s, err := r.Proxy(reflect.TypeFor[T](), opts...)
	if err != nil {
		return zero, err
	}
	return s.(T), nil
}

// MustProxy is like NewProxy but panics on error. It suits package-level
// proxy variables.
func MustProxy[T Stream](r *Registry, opts ...ProxyOption) T {
	p, err := NewProxy[T](r, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Proxy builds a proxy for ch. The returned value implements ch.
func (r *Registry) Proxy(ch reflect.Type, opts ...ProxyOption) (Stream, error) {
	if err := validateChannel(ch); err != nil {
		return nil, err
	}

	factories.mu.RLock()
	factory, ok := factories.m[ch]
	factories.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s (run streamgen for the package declaring it)", ErrNoProxyFactory, ch)
	}

	p := &Proxy{registry: r, channel: ch}
	for _, opt := range opts {
		opt(p)
	}

	r.trace("proxy created",
		slog.String("channel", ch.String()),
		slog.Any("tag", p.tag),
		slog.Bool("dispatch_func", p.dispatch != nil),
		slog.Bool("result_override", p.override))

	return factory(p), nil
}
