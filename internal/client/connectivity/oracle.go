// Package connectivity answers "is the remote store reachable right now?".
//
// The answer is best-effort: a true result does not guarantee the next remote
// call succeeds. Every probe is bounded by a timeout and a failing or
// panicking probe counts as offline.
package connectivity

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/offsync/internal/logging"
)

// Pinger is whatever can probe the remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

const DefaultTimeout = 3 * time.Second

type Oracle struct {
	pinger  Pinger
	timeout time.Duration
	log     logging.Logger
	last    atomic.Bool
}

func NewOracle(p Pinger, timeout time.Duration, log logging.Logger) *Oracle {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Oracle{pinger: p, timeout: timeout, log: log.With("component", "connectivity")}
}

// IsOnline probes the remote store. It never blocks longer than the
// configured timeout plus the time the pinger takes to honor cancellation.
func (o *Oracle) IsOnline(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	err := o.probe(ctx)
	if err != nil {
		o.log.Debug(ctx, "remote store unreachable", "error", err)
	}
	online := err == nil
	o.last.Store(online)
	return online
}

// LastKnown returns the outcome of the most recent probe without probing.
func (o *Oracle) LastKnown() bool {
	return o.last.Load()
}

func (o *Oracle) probe(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe panicked: %v", r)
		}
	}()
	return o.pinger.Ping(ctx)
}

// Watch probes every interval until ctx is done and calls onChange whenever
// the reachability flips. The first probe happens immediately and is always
// reported.
func (o *Oracle) Watch(ctx context.Context, interval time.Duration, onChange func(online bool)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	known := false
	var prev bool
	check := func() {
		online := o.IsOnline(ctx)
		if known && online == prev {
			return
		}
		known = true
		prev = online
		if ctx.Err() != nil {
			return
		}
		if online {
			o.log.Info(ctx, "switched to online mode")
		} else {
			o.log.Info(ctx, "switched to offline mode")
		}
		if onChange != nil {
			onChange(online)
		}
	}

	check()
	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
