package demo

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/neoclaw-ai/stream/internal/stream"
)

// StopContent is the content at which a Button stops asking further sources.
const StopContent = "2"

// Button shows the content of the ContentSource listeners when clicked.
// The broadcast stops at the first source answering StopContent.
type Button struct {
	source ContentSource
	Text   string
}

// NewButton builds an untagged Button dispatching through r.
func NewButton(r *stream.Registry) (*Button, error) {
	source, err := stream.NewProxy[ContentSource](r,
		stream.WithDispatchFunc(func(d stream.Dispatch) bool {
			return d.Results[0] == StopContent
		}))
	if err != nil {
		return nil, fmt.Errorf("build button: %w", err)
	}
	return &Button{source: source, Text: "button"}, nil
}

// Click asks the sources for content and shows it.
func (b *Button) Click() string {
	b.Text = b.source.ActivityContent()
	return b.Text
}

// TextView shows the number of the last Counter listener when clicked.
type TextView struct {
	counter Counter
	Text    string
}

// NewTextView builds an untagged TextView dispatching through r.
func NewTextView(r *stream.Registry) (*TextView, error) {
	counter, err := stream.NewProxy[Counter](r)
	if err != nil {
		return nil, fmt.Errorf("build text view: %w", err)
	}
	return &TextView{counter: counter}, nil
}

func (v *TextView) Click() string {
	v.Text = strconv.Itoa(v.counter.TextViewContent())
	return v.Text
}

// Screen owns the content and count its widgets display. It listens
// untagged on ContentSource and Counter.
type Screen struct {
	stream.Untagged
	Content string
	Count   int
}

func (s *Screen) ActivityContent() string { return s.Content }

func (s *Screen) TextViewContent() int { return s.Count }

// Echo answers greetings on its tag with a fixed reply.
type Echo struct {
	stream.Tagged
	Reply string
}

// NewEcho returns an Echo listening on tag.
func NewEcho(tag any, reply string) *Echo {
	return &Echo{Tagged: stream.Tagged{Tag: tag}, Reply: reply}
}

func (e *Echo) Greet(string) string { return e.Reply }

// TickLog writes one line per tick to w.
type TickLog struct {
	stream.Tagged

	mu sync.Mutex
	w  io.Writer
	n  int
}

// NewTickLog returns a TickLog listening on tag.
func NewTickLog(tag any, w io.Writer) *TickLog {
	return &TickLog{Tagged: stream.Tagged{Tag: tag}, w: w}
}

func (l *TickLog) Tick(at time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.n++
	_, _ = fmt.Fprintf(l.w, "tick %d at %s\n", l.n, at.Format(time.TimeOnly))
}

// Ticks returns the number of ticks seen.
func (l *TickLog) Ticks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.n
}
