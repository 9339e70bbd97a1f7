// Package console implements the line commands of the interactive stream
// shell. Listeners created from the console answer with fixed replies, so a
// user can watch tag matching and last-match-wins at work.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"

	"github.com/neoclaw-ai/stream/internal/demo"
	"github.com/neoclaw-ai/stream/internal/stream"
)

// ErrExit is returned by Handle for the exit and quit commands.
var ErrExit = errors.New("exit")

const helpText = `Commands:
  listen <name> <channel> <tag|-> <reply>   register a listener answering reply
  drop <name>                               unregister a listener
  call <channel> <tag|-> [args...]          broadcast through a proxy
  list                                      show channels and their listeners
  debug on|off                              toggle dispatch tracing
  help                                      show this text
  exit                                      leave the shell
Channels: `

// Handler executes console commands against a registry.
type Handler struct {
	registry *stream.Registry

	mu        sync.Mutex
	listeners map[string]*listener
}

// New creates a handler owning no listeners yet.
func New(r *stream.Registry) *Handler {
	if r == nil {
		r = stream.Default()
	}
	return &Handler{registry: r, listeners: make(map[string]*listener)}
}

// Handle executes one line and writes its output to w. Blank lines are
// ignored. It returns ErrExit when the user asked to leave.
func (h *Handler) Handle(ctx context.Context, line string, w io.Writer) error {
	if w == nil {
		return errors.New("writer is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command: %w", err)
	}
	if len(args) == 0 {
		return nil
	}

	switch cmd, rest := strings.ToLower(args[0]), args[1:]; cmd {
	case "help", "?":
		_, err := fmt.Fprintln(w, helpText+strings.Join(demo.ChannelNames(), ", "))
		return err
	case "listen":
		return h.listen(rest, w)
	case "drop":
		return h.drop(rest, w)
	case "call":
		return h.call(rest, w)
	case "list":
		return h.list(w)
	case "debug":
		return h.debug(rest, w)
	case "exit", "quit":
		return ErrExit
	default:
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
}

// Close unregisters every listener the console created.
func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for name, l := range h.listeners {
		if _, err := h.registry.Unregister(l, l.channel); err != nil {
			errs = append(errs, fmt.Errorf("drop %s: %w", name, err))
		}
		delete(h.listeners, name)
	}
	return errors.Join(errs...)
}

func (h *Handler) listen(args []string, w io.Writer) error {
	if len(args) != 4 {
		return errors.New("usage: listen <name> <channel> <tag|-> <reply>")
	}
	name, reply := args[0], args[3]
	ch, err := channel(args[1])
	if err != nil {
		return err
	}

	l := &listener{name: name, channel: ch, tag: parseTag(args[2]), reply: reply, out: w}
	if ch == stream.ChannelOf[demo.Counter]() {
		if l.count, err = strconv.Atoi(reply); err != nil {
			return fmt.Errorf("counter reply must be an integer: %q", reply)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.listeners[name]; ok {
		return fmt.Errorf("listener %q exists; drop it first", name)
	}
	if _, err := h.registry.Register(l, ch); err != nil {
		return err
	}
	h.listeners[name] = l

	_, err = fmt.Fprintf(w, "%s listening on %s tag=%s\n", name, args[1], formatTag(l.tag))
	return err
}

func (h *Handler) drop(args []string, w io.Writer) error {
	if len(args) != 1 {
		return errors.New("usage: drop <name>")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.listeners[args[0]]
	if !ok {
		return fmt.Errorf("no listener named %q", args[0])
	}
	if _, err := h.registry.Unregister(l, l.channel); err != nil {
		return err
	}
	delete(h.listeners, args[0])

	_, err := fmt.Fprintf(w, "%s dropped\n", l.name)
	return err
}

func (h *Handler) call(args []string, w io.Writer) error {
	if len(args) < 2 {
		return errors.New("usage: call <channel> <tag|-> [args...]")
	}
	ch, err := channel(args[0])
	if err != nil {
		return err
	}
	opt := stream.WithTag(parseTag(args[1]))
	rest := args[2:]

	var out string
	switch ch {
	case stream.ChannelOf[demo.Greeter]():
		if len(rest) != 1 {
			return errors.New("usage: call greeter <tag|-> <name>")
		}
		g, err := stream.NewProxy[demo.Greeter](h.registry, opt)
		if err != nil {
			return err
		}
		out = strconv.Quote(g.Greet(rest[0]))
	case stream.ChannelOf[demo.ContentSource]():
		c, err := stream.NewProxy[demo.ContentSource](h.registry, opt)
		if err != nil {
			return err
		}
		out = strconv.Quote(c.ActivityContent())
	case stream.ChannelOf[demo.Counter]():
		c, err := stream.NewProxy[demo.Counter](h.registry, opt)
		if err != nil {
			return err
		}
		out = strconv.Itoa(c.TextViewContent())
	case stream.ChannelOf[demo.Ticker]():
		t, err := stream.NewProxy[demo.Ticker](h.registry, opt)
		if err != nil {
			return err
		}
		t.Tick(time.Now())
		out = "ok"
	}

	_, err = fmt.Fprintf(w, "-> %s\n", out)
	return err
}

func (h *Handler) list(w io.Writer) error {
	chans := h.registry.Channels()
	if len(chans) == 0 {
		_, err := fmt.Fprintln(w, "No listeners.")
		return err
	}

	h.mu.Lock()
	owned := make(map[stream.Stream]string, len(h.listeners))
	for name, l := range h.listeners {
		owned[l] = name
	}
	h.mu.Unlock()

	lines := make([]string, 0, len(chans))
	for _, ch := range chans {
		var parts []string
		for _, l := range h.registry.Listeners(ch) {
			name, ok := owned[l]
			if !ok {
				name = fmt.Sprintf("%T", l)
			}
			parts = append(parts, fmt.Sprintf("%s(tag=%s)", name, formatTag(l.StreamTag(ch))))
		}
		lines = append(lines, fmt.Sprintf("%s: %s", demo.ChannelName(ch), strings.Join(parts, " ")))
	}
	sort.Strings(lines)

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func (h *Handler) debug(args []string, w io.Writer) error {
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "on":
			h.registry.SetDebug(true)
		case "off":
			h.registry.SetDebug(false)
		default:
			return errors.New("usage: debug on|off")
		}
	} else if len(args) > 1 {
		return errors.New("usage: debug on|off")
	}

	state := "off"
	if h.registry.Debug() {
		state = "on"
	}
	_, err := fmt.Fprintf(w, "debug %s\n", state)
	return err
}

func channel(name string) (reflect.Type, error) {
	ch, ok := demo.Channel(strings.ToLower(name))
	if !ok {
		return nil, fmt.Errorf("unknown channel %q (one of %s)", name, strings.Join(demo.ChannelNames(), ", "))
	}
	return ch, nil
}

// parseTag maps "-" to the nil tag.
func parseTag(s string) any {
	if s == "-" {
		return nil
	}
	return s
}

func formatTag(tag any) string {
	if tag == nil {
		return "-"
	}
	return fmt.Sprint(tag)
}

// listener answers on one demo channel with a fixed reply. It is
// registered on exactly that channel.
type listener struct {
	name    string
	channel reflect.Type
	tag     any
	reply   string
	count   int
	out     io.Writer
}

func (l *listener) StreamTag(reflect.Type) any { return l.tag }

func (l *listener) ActivityContent() string { return l.reply }

func (l *listener) TextViewContent() int { return l.count }

// Greet substitutes {name} in the reply.
func (l *listener) Greet(name string) string {
	return strings.ReplaceAll(l.reply, "{name}", name)
}

func (l *listener) Tick(at time.Time) {
	_, _ = fmt.Fprintf(l.out, "%s: %s at %s\n", l.name, l.reply, at.Format(time.TimeOnly))
}
