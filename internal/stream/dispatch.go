package stream

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"
)

var errorType = reflect.TypeFor[error]()

// Dispatch describes one matched listener invocation, as seen by a DispatchFunc.
type Dispatch struct {
	Channel  reflect.Type
	Method   string
	Args     []any
	Results  []any
	Listener Stream
	// Index is the position of Listener among the listeners matched so far.
	Index int
}

// DispatchFunc observes each matched listener's results. Returning true stops
// the broadcast; the current results become final.
type DispatchFunc func(d Dispatch) (stop bool)

// ResultRequester is implemented by listeners that may claim the result of a
// call made through a proxy built WithResultOverride. The first listener to
// claim wins; later listeners are still invoked.
type ResultRequester interface {
	RequestAsResult(channel reflect.Type, method string) bool
}

// Invoke broadcasts method with args to the channel's listeners whose tag
// matches the proxy's and returns the aggregated results, one per declared
// result of the method.
//
// Listeners run synchronously in registration order on the calling
// goroutine; the results of the last matched listener are returned unless a
// listener claimed them (see WithResultOverride). When nothing matched, the
// zero value of each declared result is returned. There is no timeout: a
// listener that blocks blocks the caller.
//
// A listener panic propagates to the caller. If the method's last result is
// an error and a listener returns a non-nil one, the broadcast stops and that
// listener's results are returned.
func (p *Proxy) Invoke(method string, args ...any) []any {
	if method == tagMethod {
		panic(ErrProxyTagAccess)
	}
	m, ok := p.channel.MethodByName(method)
	if !ok {
		panic(fmt.Errorf("%w: %s.%s", ErrUnknownMethod, p.channel, method))
	}
	return p.registry.dispatch(p, m, args)
}

func (r *Registry) dispatch(p *Proxy, m reflect.Method, args []any) []any {
	in := callArgs(p.channel, m, args)
	listeners := r.snapshot(p.channel)

	debug := r.Debug()
	var id string
	if debug {
		id = uuid.NewString()
		r.trace("notify",
			slog.String("dispatch_id", id),
			slog.String("channel", p.channel.String()),
			slog.String("method", m.Name),
			slog.Any("args", args),
			slog.Any("tag", p.tag),
			slog.Int("count", len(listeners)))
	}

	var (
		result  []any
		pinned  []any
		claimed bool
		matched int
	)
	for _, l := range listeners {
		if !Match(p.tag, l.StreamTag(p.channel)) {
			continue
		}

		out := call(l, m, in)
		result = out
		if debug {
			r.trace("notify listener",
				slog.String("dispatch_id", id),
				slog.Int("index", matched),
				slog.String("listener", describe(l)),
				slog.Any("return", out))
		}

		if p.override && !claimed {
			if rr, ok := l.(ResultRequester); ok && rr.RequestAsResult(p.channel, m.Name) {
				pinned, claimed = out, true
				if debug {
					r.trace("notify result requested",
						slog.String("dispatch_id", id),
						slog.String("listener", describe(l)))
				}
			}
		}

		if failed(m.Type, out) {
			if debug {
				r.trace("notify failed",
					slog.String("dispatch_id", id),
					slog.String("listener", describe(l)),
					slog.Any("err", out[len(out)-1]))
			}
			return out
		}

		if p.dispatch != nil && p.dispatch(Dispatch{
			Channel:  p.channel,
			Method:   m.Name,
			Args:     args,
			Results:  out,
			Listener: l,
			Index:    matched,
		}) {
			if debug {
				r.trace("notify stopped", slog.String("dispatch_id", id), slog.Int("index", matched))
			}
			break
		}
		matched++
	}

	if claimed {
		result = pinned
	}
	return r.finish(m, result, id)
}

// finish shapes result to the method's declared results.
func (r *Registry) finish(m reflect.Method, result []any, id string) []any {
	n := m.Type.NumOut()
	if n == 0 {
		return nil
	}
	if result == nil {
		result = make([]any, n)
		for i := range n {
			result[i] = reflect.Zero(m.Type.Out(i)).Interface()
		}
		r.trace("notify no listener result, using zero values",
			slog.String("dispatch_id", id),
			slog.String("method", m.Name))
	}
	r.trace("notify final return", slog.String("dispatch_id", id), slog.Any("return", result))
	return result
}

func callArgs(ch reflect.Type, m reflect.Method, args []any) []reflect.Value {
	if len(args) != m.Type.NumIn() {
		panic(fmt.Errorf("%w: %s.%s takes %d, got %d", ErrArgumentCount, ch, m.Name, m.Type.NumIn(), len(args)))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.Zero(m.Type.In(i))
			continue
		}
		in[i] = reflect.ValueOf(a)
	}
	return in
}

func call(l Stream, m reflect.Method, in []reflect.Value) []any {
	fn := reflect.ValueOf(l).MethodByName(m.Name)
	var rv []reflect.Value
	if m.Type.IsVariadic() {
		rv = fn.CallSlice(in)
	} else {
		rv = fn.Call(in)
	}
	out := make([]any, len(rv))
	for i, v := range rv {
		out[i] = v.Interface()
	}
	return out
}

func failed(mt reflect.Type, out []any) bool {
	n := mt.NumOut()
	return n > 0 && mt.Out(n-1) == errorType && out[n-1] != nil
}
