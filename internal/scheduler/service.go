// Package scheduler broadcasts cron ticks on the demo Ticker channel.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/neoclaw-ai/stream/internal/demo"
	"github.com/neoclaw-ai/stream/internal/logging"
	"github.com/neoclaw-ai/stream/internal/stream"
)

// Service calls Tick on a Ticker proxy on every cron firing.
type Service struct {
	spec   string
	ticker demo.Ticker
	cron   *cron.Cron
	now    func() time.Time

	mu      sync.Mutex
	started bool
}

// New builds a service ticking spec on r's Ticker listeners matching tag.
// spec accepts standard five-field cron expressions and descriptors like
// "@every 1s".
func New(r *stream.Registry, spec string, tag any) (*Service, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	ticker, err := stream.NewProxy[demo.Ticker](r, stream.WithTag(tag))
	if err != nil {
		return nil, err
	}
	return &Service{
		spec:   spec,
		ticker: ticker,
		now:    time.Now,
		cron: cron.New(
			cron.WithLocation(time.Local),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
	}, nil
}

// Start registers the tick job and starts cron execution.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(s.cron.Entries()) == 0 {
		if _, err := s.cron.AddFunc(s.spec, s.tick); err != nil {
			return fmt.Errorf("register tick %q: %w", s.spec, err)
		}
	}

	s.cron.Start()
	s.started = true
	logging.Logger().Info("scheduler started", "spec", s.spec)
	return nil
}

// Stop stops cron and waits for an in-flight tick to finish or ctx cancellation.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	doneCtx := s.cron.Stop()
	s.started = false
	s.mu.Unlock()

	select {
	case <-doneCtx.Done():
		logging.Logger().Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow ticks once immediately.
func (s *Service) RunNow() {
	logging.Logger().Info("tick run", "source", "manual")
	s.tick()
}

func (s *Service) tick() {
	s.ticker.Tick(s.now())
}
