// Package stream broadcasts interface method calls to every registered
// listener of that interface.
//
// A channel is an interface embedding Stream:
//
//	//go:generate go run github.com/neoclaw-ai/stream/cmd/streamgen -source channels.go
//
//	type Greeter interface {
//		stream.Stream
//		Greet(name string) string
//	}
//
// Listeners implement the channel and report a tag per channel through
// StreamTag; embedding Untagged or Tagged covers the common cases. They are
// added with Register and removed with Unregister:
//
//	type echo struct {
//		stream.Tagged
//		reply string
//	}
//
//	func (e *echo) Greet(string) string { return e.reply }
//
//	r := stream.NewRegistry()
//	r.Register(&echo{Tagged: stream.Tagged{Tag: "x"}, reply: "hi"})
//
// Callers build a proxy for the channel and call it as if it were a
// listener. The call reaches every listener whose tag matches the proxy's and
// returns the result of the last one:
//
//	greeter := stream.MustProxy[Greeter](r, stream.WithTag("x"))
//	greeter.Greet("bob") // "hi"
//
// Go cannot implement an interface at run time, so proxies are small
// generated types (see cmd/streamgen) that embed *Proxy and forward each
// method to Proxy.Invoke.
//
// Dispatch is synchronous and lock-free with respect to Register and
// Unregister: a call iterates the listener list as it was when the call
// started. A listener that blocks blocks the caller; there is no timeout.
package stream
