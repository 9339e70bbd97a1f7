package cli

import (
	"context"
	"os"
	"os/signal"
	"reflect"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/neoclaw-ai/stream/internal/demo"
	"github.com/neoclaw-ai/stream/internal/logging"
	"github.com/neoclaw-ai/stream/internal/scheduler"
	"github.com/neoclaw-ai/stream/internal/stream"
)

const scheduleStopTimeout = 5 * time.Second

func newScheduleCmd(a *app) *cobra.Command {
	var (
		spec  string
		tag   string
		count int
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Broadcast cron ticks to a tick log until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("spec") {
				spec = a.cfg.Schedule.Spec
			}
			if !cmd.Flags().Changed("tag") {
				tag = a.cfg.Schedule.Tag
			}
			var streamTag any
			if tag != "" {
				streamTag = tag
			}

			tickLog := demo.NewTickLog(streamTag, cmd.OutOrStdout())
			done := &tickCounter{tag: streamTag, limit: count, done: make(chan struct{})}
			for _, l := range []stream.Stream{tickLog, done} {
				if _, err := a.registry.Register(l); err != nil {
					return err
				}
				defer func() { _, _ = a.registry.Unregister(l) }()
			}

			svc, err := scheduler.New(a.registry, spec, streamTag)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), scheduleStopTimeout)
				defer cancel()
				if err := svc.Stop(stopCtx); err != nil {
					logging.Logger().Warn("scheduler stop failed", "err", err)
				}
			}()

			select {
			case <-ctx.Done():
			case <-done.done:
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&spec, "spec", "", "cron spec (default from [schedule] spec)")
	cmd.Flags().StringVar(&tag, "tag", "", "Ticker tag (default from [schedule] tag)")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many ticks (0 runs until interrupted)")
	return cmd
}

// tickCounter closes done after limit ticks. A zero limit never closes it.
type tickCounter struct {
	tag   any
	limit int
	n     int
	done  chan struct{}
}

func (c *tickCounter) StreamTag(reflect.Type) any { return c.tag }

// Tick is only called by the scheduler, which skips overlapping runs.
func (c *tickCounter) Tick(time.Time) {
	c.n++
	if c.limit > 0 && c.n == c.limit {
		close(c.done)
	}
}
