package cli

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/neoclaw-ai/stream/internal/demo"
	"github.com/neoclaw-ai/stream/internal/logging"
	"github.com/neoclaw-ai/stream/internal/stream"
)

func newStressCmd(a *app) *cobra.Command {
	var workers, calls, listeners int

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Dispatch concurrently while listeners churn and check every result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := a.cfg.Stress
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}
			if cmd.Flags().Changed("calls") {
				opts.Calls = calls
			}
			if cmd.Flags().Changed("listeners") {
				opts.Listeners = listeners
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Timeout)
			defer cancel()
			res, err := runStress(ctx, a.registry, opts.Workers, opts.Calls, opts.Listeners)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(),
				"stress: %d calls across %d workers in %s (%.0f calls/s), %d churn cycles\n",
				res.calls, opts.Workers, res.elapsed.Round(time.Millisecond), res.rate(), res.churn)
			return err
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent callers (default from [stress] workers)")
	cmd.Flags().IntVar(&calls, "calls", 0, "calls per worker (default from [stress] calls)")
	cmd.Flags().IntVar(&listeners, "listeners", 0, "tagged listeners (default from [stress] listeners)")
	return cmd
}

type stressResult struct {
	calls   int64
	churn   int64
	elapsed time.Duration
}

func (r stressResult) rate() float64 {
	if r.elapsed <= 0 {
		return 0
	}
	return float64(r.calls) / r.elapsed.Seconds()
}

// runStress registers one Echo per tag, replying with its tag, then has each
// worker greet through its own tagged proxy while another goroutine keeps
// registering and unregistering a duplicate listener. Every reply must be the
// worker's tag, or empty when there are no listeners.
func runStress(ctx context.Context, r *stream.Registry, workers, calls, listeners int) (stressResult, error) {
	tagOf := func(i int) string {
		if listeners == 0 {
			return "t0"
		}
		return "t" + strconv.Itoa(i%listeners)
	}
	want := func(tag string) string {
		if listeners == 0 {
			return ""
		}
		return tag
	}

	for i := 0; i < listeners; i++ {
		l := demo.NewEcho(tagOf(i), tagOf(i))
		if _, err := r.Register(l); err != nil {
			return stressResult{}, err
		}
		defer func() { _, _ = r.Unregister(l) }()
	}

	var (
		res     stressResult
		total   atomic.Int64
		churned atomic.Int64
	)
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	workCtx, stopChurn := context.WithCancel(gctx)
	defer stopChurn()

	var running sync.WaitGroup
	for w := 0; w < workers; w++ {
		running.Add(1)
		g.Go(func() error {
			defer running.Done()
			tag := tagOf(w)
			greeter, err := stream.NewProxy[demo.Greeter](r, stream.WithTag(tag))
			if err != nil {
				return err
			}
			for i := 0; i < calls; i++ {
				if err := workCtx.Err(); err != nil {
					return err
				}
				if got := greeter.Greet("stress"); got != want(tag) {
					return fmt.Errorf("worker %d call %d: got %q, want %q", w, i, got, want(tag))
				}
				total.Add(1)
			}
			return nil
		})
	}
	g.Go(func() error {
		if listeners == 0 {
			return nil
		}
		for workCtx.Err() == nil {
			l := demo.NewEcho(tagOf(0), tagOf(0))
			if _, err := r.Register(l); err != nil {
				return err
			}
			if _, err := r.Unregister(l); err != nil {
				return err
			}
			churned.Add(1)
		}
		return nil
	})
	go func() {
		running.Wait()
		stopChurn()
	}()

	err := g.Wait()
	res.elapsed = time.Since(start)
	res.calls = total.Load()
	res.churn = churned.Load()
	if err != nil {
		return res, fmt.Errorf("stress: %w", err)
	}
	logging.Logger().Debug("stress finished", "calls", res.calls, "churn", res.churn, "elapsed", res.elapsed)
	return res, nil
}
