package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoclaw-ai/stream/internal/demo"
	"github.com/neoclaw-ai/stream/internal/stream"
)

func run(t *testing.T, h *Handler, lines ...string) string {
	t.Helper()
	var buf bytes.Buffer
	for _, line := range lines {
		require.NoError(t, h.Handle(context.Background(), line, &buf), line)
	}
	return buf.String()
}

func TestHelpCommand(t *testing.T) {
	out := run(t, New(stream.NewRegistry()), "help")
	assert.Contains(t, out, "listen <name> <channel> <tag|-> <reply>")
	assert.Contains(t, out, "content, counter, greeter, ticker")
}

func TestBlankLineIsIgnored(t *testing.T) {
	assert.Empty(t, run(t, New(stream.NewRegistry()), "", "   "))
}

func TestListenAndCallGreeter(t *testing.T) {
	h := New(stream.NewRegistry())
	out := run(t, h,
		`listen a greeter x "hello {name}"`,
		`listen b greeter y "bye {name}"`,
		`call greeter x bob`,
		`call greeter y bob`,
		`call greeter z bob`,
	)

	assert.Contains(t, out, "a listening on greeter tag=x")
	assert.Contains(t, out, `-> "hello bob"`)
	assert.Contains(t, out, `-> "bye bob"`)
	assert.Contains(t, out, `-> ""`)
}

func TestCallLastMatchWins(t *testing.T) {
	h := New(stream.NewRegistry())
	out := run(t, h,
		"listen one counter - 1",
		"listen two counter - 2",
		"call counter -",
		"drop two",
		"call counter -",
	)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Contains(t, lines, "-> 2")
	assert.Equal(t, "-> 1", lines[len(lines)-1])
}

func TestListenRegistersOnlyNamedChannel(t *testing.T) {
	r := stream.NewRegistry()
	h := New(r)
	run(t, h, "listen a content - hi")

	content, _ := demo.Channel("content")
	assert.Len(t, r.Channels(), 1)
	assert.Len(t, r.Listeners(content), 1)
}

func TestTickerCall(t *testing.T) {
	h := New(stream.NewRegistry())
	out := run(t, h, "listen clock ticker - tock", "call ticker -")

	assert.Contains(t, out, "clock: tock at ")
	assert.Contains(t, out, "-> ok")
}

func TestList(t *testing.T) {
	r := stream.NewRegistry()
	h := New(r)
	assert.Contains(t, run(t, h, "list"), "No listeners.")

	_, err := r.Register(demo.NewEcho("e", "x"))
	require.NoError(t, err)
	out := run(t, h, "listen a greeter - hi", "listen b content x hi", "list")

	assert.Contains(t, out, "content: b(tag=x)")
	assert.Contains(t, out, "greeter: *demo.Echo(tag=e) a(tag=-)")
}

func TestDebugToggle(t *testing.T) {
	r := stream.NewRegistry()
	h := New(r)

	assert.Contains(t, run(t, h, "debug on"), "debug on")
	assert.True(t, r.Debug())
	assert.Contains(t, run(t, h, "debug"), "debug on")
	assert.Contains(t, run(t, h, "DEBUG off"), "debug off")
	assert.False(t, r.Debug())
}

func TestClose(t *testing.T) {
	r := stream.NewRegistry()
	h := New(r)
	run(t, h, "listen a greeter - hi", "listen b counter - 3")

	require.NoError(t, h.Close())
	assert.Empty(t, r.Channels())
	assert.Contains(t, run(t, h, "listen a greeter - again"), "a listening")
}

func TestErrors(t *testing.T) {
	h := New(stream.NewRegistry())
	run(t, h, "listen a greeter - hi")

	tests := []struct {
		line string
		want string
	}{
		{line: "bogus", want: `unknown command "bogus"`},
		{line: `listen "unterminated`, want: "parse command"},
		{line: "listen a greeter -", want: "usage: listen"},
		{line: "listen a greeter - again", want: `listener "a" exists`},
		{line: "listen n nowhere - x", want: `unknown channel "nowhere"`},
		{line: "listen n counter - many", want: "counter reply must be an integer"},
		{line: "drop", want: "usage: drop"},
		{line: "drop ghost", want: `no listener named "ghost"`},
		{line: "call greeter", want: "usage: call"},
		{line: "call greeter - a b", want: "usage: call greeter"},
		{line: "debug maybe", want: "usage: debug"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			require.ErrorContains(t, h.Handle(context.Background(), tt.line, &bytes.Buffer{}), tt.want)
		})
	}
}

func TestExit(t *testing.T) {
	h := New(stream.NewRegistry())
	require.ErrorIs(t, h.Handle(context.Background(), "exit", &bytes.Buffer{}), ErrExit)
	require.ErrorIs(t, h.Handle(context.Background(), "quit", &bytes.Buffer{}), ErrExit)
	require.Error(t, h.Handle(context.Background(), "help", nil))
}
