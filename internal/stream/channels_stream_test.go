// Proxies as streamgen renders them, minus Orphan.

package stream_test

import (
	"github.com/neoclaw-ai/stream/internal/stream"
)

func init() {
	stream.RegisterProxy(func(p *stream.Proxy) Greeter { return greeterProxy{p} })
	stream.RegisterProxy(func(p *stream.Proxy) Counter { return counterProxy{p} })
	stream.RegisterProxy(func(p *stream.Proxy) Notifier { return notifierProxy{p} })
	stream.RegisterProxy(func(p *stream.Proxy) Saver { return saverProxy{p} })
	stream.RegisterProxy(func(p *stream.Proxy) Joiner { return joinerProxy{p} })
}

type greeterProxy struct{ *stream.Proxy }

func (x greeterProxy) Greet(name string) string {
	out := x.Proxy.Invoke("Greet", name)
	r0, _ := out[0].(string)
	return r0
}

type counterProxy struct{ *stream.Proxy }

func (x counterProxy) Count() int {
	out := x.Proxy.Invoke("Count")
	r0, _ := out[0].(int)
	return r0
}

type notifierProxy struct{ *stream.Proxy }

func (x notifierProxy) Notify(msg string) {
	x.Proxy.Invoke("Notify", msg)
}

type saverProxy struct{ *stream.Proxy }

func (x saverProxy) Save(key string) (int, error) {
	out := x.Proxy.Invoke("Save", key)
	r0, _ := out[0].(int)
	r1, _ := out[1].(error)
	return r0, r1
}

type joinerProxy struct{ *stream.Proxy }

func (x joinerProxy) Join(sep string, parts ...string) string {
	out := x.Proxy.Invoke("Join", sep, parts)
	r0, _ := out[0].(string)
	return r0
}
