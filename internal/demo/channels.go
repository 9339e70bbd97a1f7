// Package demo holds small components wired together only through stream
// channels. They drive the demo, repl and schedule commands.
package demo

import (
	"reflect"
	"sort"
	"time"

	"github.com/neoclaw-ai/stream/internal/stream"
)

//go:generate go run ../../cmd/streamgen

// ContentSource supplies the text a Button shows when clicked.
type ContentSource interface {
	stream.Stream
	ActivityContent() string
}

// Counter supplies the number a TextView shows when clicked.
type Counter interface {
	stream.Stream
	TextViewContent() int
}

type Greeter interface {
	stream.Stream
	Greet(name string) string
}

// Ticker receives cron ticks.
type Ticker interface {
	stream.Stream
	Tick(at time.Time)
}

var channels = map[string]reflect.Type{
	"content": stream.ChannelOf[ContentSource](),
	"counter": stream.ChannelOf[Counter](),
	"greeter": stream.ChannelOf[Greeter](),
	"ticker":  stream.ChannelOf[Ticker](),
}

// Channel looks up a demo channel by its short name.
func Channel(name string) (reflect.Type, bool) {
	ch, ok := channels[name]
	return ch, ok
}

// ChannelNames returns the short names of the demo channels, sorted.
func ChannelNames() []string {
	names := make([]string, 0, len(channels))
	for name := range channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ChannelName is the inverse of Channel.
func ChannelName(ch reflect.Type) string {
	for name, t := range channels {
		if t == ch {
			return name
		}
	}
	return ch.String()
}
