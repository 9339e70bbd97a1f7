package stream_test

import (
	"errors"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/neoclaw-ai/stream/internal/stream"
)

type Greeter interface {
	stream.Stream
	Greet(name string) string
}

type Counter interface {
	stream.Stream
	Count() int
}

type Notifier interface {
	stream.Stream
	Notify(msg string)
}

type Saver interface {
	stream.Stream
	Save(key string) (int, error)
}

type Joiner interface {
	stream.Stream
	Join(sep string, parts ...string) string
}

// Orphan has no generated proxy.
type Orphan interface {
	stream.Stream
	Lonely() bool
}

type echo struct {
	tag   any
	reply string
	calls atomic.Int32
}

func newEcho(tag any, reply string) *echo {
	return &echo{tag: tag, reply: reply}
}

func (e *echo) StreamTag(reflect.Type) any { return e.tag }

func (e *echo) Greet(string) string {
	e.calls.Add(1)
	return e.reply
}

type counter struct {
	stream.Untagged
	n int
}

func (c *counter) Count() int { return c.n }

// screen listens on two channels with a different tag for each.
type screen struct {
	greeterTag any
	counterTag any
	notified   []string
}

func (s *screen) StreamTag(ch reflect.Type) any {
	switch ch {
	case stream.ChannelOf[Greeter]():
		return s.greeterTag
	case stream.ChannelOf[Counter]():
		return s.counterTag
	}
	return nil
}

func (s *screen) Greet(name string) string { return "screen:" + name }
func (s *screen) Count() int               { return 42 }
func (s *screen) Notify(msg string)        { s.notified = append(s.notified, msg) }

type panicker struct {
	stream.Untagged
	err error
}

func (p *panicker) Greet(string) string { panic(p.err) }

type saver struct {
	stream.Untagged
	n     int
	err   error
	calls atomic.Int32
}

func (s *saver) Save(string) (int, error) {
	s.calls.Add(1)
	return s.n, s.err
}

type joiner struct {
	stream.Untagged
}

func (joiner) Join(sep string, parts ...string) string {
	return strings.Join(parts, sep)
}

// claimer pins its result on proxies built WithResultOverride.
type claimer struct {
	stream.Untagged
	reply string
	claim bool
}

func (c *claimer) Greet(string) string { return c.reply }

func (c *claimer) RequestAsResult(reflect.Type, string) bool { return c.claim }

// valueListener has a slice field, so its values cannot serve as identities.
type valueListener struct {
	stream.Untagged
	parts []string
}

func (v valueListener) Greet(string) string { return strings.Join(v.parts, ",") }

// bare implements the marker but no channel.
type bare struct {
	stream.Untagged
}

type orphanListener struct {
	stream.Untagged
}

func (orphanListener) Lonely() bool { return true }

var errBoom = errors.New("boom")
