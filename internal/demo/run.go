package demo

import (
	"fmt"
	"io"

	"github.com/neoclaw-ai/stream/internal/stream"
)

// Run plays the demo scenarios against r and narrates them to w. Every
// listener it registers is unregistered before it returns.
func Run(w io.Writer, r *stream.Registry) (err error) {
	if r == nil {
		r = stream.Default()
	}

	var registered []stream.Stream
	defer func() {
		for _, l := range registered {
			if _, uerr := r.Unregister(l); uerr != nil && err == nil {
				err = uerr
			}
		}
	}()
	register := func(l stream.Stream) error {
		if _, err := r.Register(l); err != nil {
			return err
		}
		registered = append(registered, l)
		return nil
	}

	_, _ = fmt.Fprintln(w, "== greeter: one proxy per tag")
	if err := register(NewEcho("x", "echoed-A")); err != nil {
		return err
	}
	if err := register(NewEcho("y", "echoed-B")); err != nil {
		return err
	}
	for _, tag := range []string{"x", "y", "z"} {
		g, err := stream.NewProxy[Greeter](r, stream.WithTag(tag))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "greet tag=%s -> %q\n", tag, g.Greet("bob"))
	}

	_, _ = fmt.Fprintln(w, "== button and text view: three screens")
	button, err := NewButton(r)
	if err != nil {
		return err
	}
	view, err := NewTextView(r)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "no screens: button %q, text view %q\n", button.Click(), view.Click())

	for i := 1; i <= 3; i++ {
		if err := register(&Screen{Content: fmt.Sprint(i), Count: i * 10}); err != nil {
			return err
		}
	}
	_, _ = fmt.Fprintf(w, "button stops at %q -> %q\n", StopContent, button.Click())
	_, _ = fmt.Fprintf(w, "text view takes the last screen -> %q\n", view.Click())

	return nil
}
