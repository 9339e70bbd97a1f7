package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/neoclaw-ai/stream/internal/config"
	"github.com/neoclaw-ai/stream/internal/console"
)

const defaultReplPrompt = "stream> "

func newREPLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Register listeners and broadcast calls interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			handler := console.New(a.registry)
			defer handler.Close()

			in, out := cmd.InOrStdin(), cmd.OutOrStdout()
			var lines lineReader
			if rl, err := newReadlineReader(a.cfg, in, out); err == nil {
				lines = rl
			} else {
				lines = newStdioReader(in, out)
			}
			defer lines.Close()

			return runREPL(cmd.Context(), handler, lines, out)
		},
	}
}

type lineReader interface {
	ReadLine() (string, error)
	Close() error
}

type readlineReader struct {
	rl *readline.Instance
}

// newReadlineReader fails unless both in and out are terminals.
func newReadlineReader(cfg *config.Config, in io.Reader, out io.Writer) (*readlineReader, error) {
	inFile, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(inFile.Fd())) {
		return nil, errors.New("stdin is not terminal")
	}
	outFile, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(outFile.Fd())) {
		return nil, errors.New("stdout is not terminal")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          defaultReplPrompt,
		HistoryFile:     cfg.HistoryPath(),
		HistoryLimit:    cfg.REPL.HistoryLimit,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           inFile,
		Stdout:          out,
		Stderr:          out,
	})
	if err != nil {
		return nil, err
	}
	return &readlineReader{rl: rl}, nil
}

func (r *readlineReader) ReadLine() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}

type stdioReader struct {
	in  *bufio.Scanner
	out io.Writer
}

func newStdioReader(in io.Reader, out io.Writer) *stdioReader {
	return &stdioReader{in: bufio.NewScanner(in), out: out}
}

func (r *stdioReader) ReadLine() (string, error) {
	if _, err := fmt.Fprint(r.out, defaultReplPrompt); err != nil {
		return "", err
	}
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.in.Text(), nil
}

func (r *stdioReader) Close() error { return nil }

func runREPL(ctx context.Context, handler *console.Handler, lines lineReader, out io.Writer) error {
	if _, err := fmt.Fprintln(out, "Interactive mode. Type help for commands, exit to stop."); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		err = handler.Handle(ctx, line, out)
		if errors.Is(err, console.ErrExit) {
			return nil
		}
		if err != nil {
			if _, werr := fmt.Fprintf(out, "error: %v\n", err); werr != nil {
				return werr
			}
		}
	}
}
