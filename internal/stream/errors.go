package stream

import "errors"

// Configuration errors. They are returned (wrapped with context) by Register,
// Unregister and proxy construction.
var (
	// ErrNilChannel is returned when a nil channel type is supplied.
	ErrNilChannel = errors.New("stream: channel is nil")

	// ErrInvalidChannel is returned for a type that is not a channel interface.
	ErrInvalidChannel = errors.New("stream: invalid channel")

	// ErrMarkerChannel is returned when Stream itself is used as a channel.
	ErrMarkerChannel = errors.New("stream: the Stream marker is not a channel")

	// ErrNoProxyFactory is returned when no generated proxy is linked in for a channel.
	ErrNoProxyFactory = errors.New("stream: no proxy registered for channel")

	// ErrNilListener is returned when registering a nil listener.
	ErrNilListener = errors.New("stream: listener is nil")

	// ErrProxyListener is returned when a proxy is registered as a listener.
	ErrProxyListener = errors.New("stream: a proxy cannot be registered as a listener")

	// ErrUncomparableListener is returned when the listener's dynamic type cannot be compared for identity.
	ErrUncomparableListener = errors.New("stream: listener type is not comparable")

	// ErrChannelNotImplemented is returned when an explicit channel is not implemented by the listener.
	ErrChannelNotImplemented = errors.New("stream: listener does not implement channel")
)

// Usage errors. Proxy methods have no error slot, so these are raised with panic.
var (
	// ErrProxyTagAccess is raised when StreamTag is called on a proxy.
	ErrProxyTagAccess = errors.New("stream: StreamTag cannot be called on a proxy")

	// ErrUnknownMethod is raised when Invoke names a method the channel does not declare.
	ErrUnknownMethod = errors.New("stream: unknown channel method")

	// ErrArgumentCount is raised when Invoke receives the wrong number of arguments.
	ErrArgumentCount = errors.New("stream: wrong number of arguments")
)
