package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"IdeaValidator/internal/ports"
)

// ErrAlreadyStarted is returned by Start on a running scheduler.
var ErrAlreadyStarted = errors.New("scheduler already started")

// CronScheduler runs a job on a standard five-field cron expression.
type CronScheduler struct {
	expr     string
	location *time.Location
	parser   cron.Parser

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler validates expr and binds it to loc (UTC when nil).
func NewCronScheduler(expr string, loc *time.Location) (*CronScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(expr); err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return &CronScheduler{expr: expr, location: loc, parser: parser}, nil
}

// Next reports the first activation after t.
func (c *CronScheduler) Next(t time.Time) time.Time {
	sched, err := c.parser.Parse(c.expr)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(t.In(c.location))
}

// Start registers job and starts the cron loop. The loop also stops when ctx
// is done.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return ErrAlreadyStarted
	}

	cr := cron.New(
		cron.WithParser(c.parser),
		cron.WithLocation(c.location),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	id, err := cr.AddFunc(c.expr, func() { job(time.Now().In(c.location)) })
	if err != nil {
		return fmt.Errorf("register job: %w", err)
	}
	c.cron = cr
	c.entryID = id
	cr.Start()

	go func() {
		<-ctx.Done()
		_ = c.Stop(context.Background())
	}()
	return nil
}

// Stop halts the loop and waits for a running job until ctx expires.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	cr := c.cron
	c.cron = nil
	c.mu.Unlock()
	if cr == nil {
		return nil
	}

	done := cr.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
