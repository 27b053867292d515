// Package loader runs model loads off the input goroutine and hands the
// results back to it over a channel.
package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/taigrr/orbitview/pkg/models"
)

var (
	// ErrBusy is returned by Load under DropWhileBusy while a load is running.
	ErrBusy   = errors.New("a model is already loading")
	ErrClosed = errors.New("loader closed")
)

// Policy decides what happens to a request that arrives mid-load.
type Policy int

const (
	// LatestWins cancels the running load; only the newest result is delivered.
	LatestWins Policy = iota
	// DropWhileBusy rejects new requests until the running load finishes.
	DropWhileBusy
)

func (p Policy) String() string {
	if p == DropWhileBusy {
		return "drop-while-busy"
	}
	return "latest-wins"
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "latest-wins", "latest":
		return LatestWins, nil
	case "drop-while-busy", "drop":
		return DropWhileBusy, nil
	}
	return LatestWins, fmt.Errorf("unknown loader policy %q (want latest-wins or drop-while-busy)", s)
}

// LoadFunc reads the model at path. It should return promptly once ctx is
// cancelled.
type LoadFunc func(ctx context.Context, path string) (*models.Info, error)

// Result is the outcome of one accepted request.
type Result struct {
	Generation uint64
	Path       string
	Info       *models.Info
	Err        error
	Elapsed    time.Duration
}

// Coordinator serializes model loads for one viewer.
type Coordinator struct {
	load   LoadFunc
	policy Policy
	log    zerolog.Logger
	onIdle func(gen uint64)

	mu     sync.Mutex
	gen    uint64
	busy   bool
	cancel context.CancelFunc
	closed bool

	done       chan Result
	results    chan Result
	superseded chan struct{}
	stop       chan struct{}
	stopped chan struct{}
	workers sync.WaitGroup
	once    sync.Once
}

type Option func(*Coordinator)

func WithPolicy(p Policy) Option {
	return func(c *Coordinator) {
		c.policy = p
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// WithOnIdle registers fn to run each time a burst of requests ends, from the
// dispatch goroutine, after its one result has been handed to the owner.
func WithOnIdle(fn func(gen uint64)) Option {
	return func(c *Coordinator) {
		c.onIdle = fn
	}
}

// New starts a coordinator. A nil load uses models.LoadContext.
func New(load LoadFunc, options ...Option) *Coordinator {
	if load == nil {
		load = models.LoadContext
	}
	c := &Coordinator{
		load:    load,
		log:     zerolog.Nop(),
		done:       make(chan Result),
		results:    make(chan Result),
		superseded: make(chan struct{}, 1),
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	for _, option := range options {
		option(c)
	}
	go c.dispatch()
	return c
}

// Results delivers completed loads. It is closed by Close.
func (c *Coordinator) Results() <-chan Result {
	return c.results
}

// Busy reports whether a load is in flight or its result has not yet been
// taken from Results.
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Generation is the tag of the most recently accepted request.
func (c *Coordinator) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Load requests path and returns the generation its result will carry.
func (c *Coordinator) Load(path string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrClosed
	}
	if c.busy {
		if c.policy == DropWhileBusy {
			c.log.Debug().Str("path", path).Msg("Load in progress, dropping request")
			return 0, ErrBusy
		}
		c.log.Debug().Uint64("generation", c.gen).Str("path", path).Msg("Superseding running load")
		c.cancel()
	}

	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.busy = true

	// Wake dispatch if it is waiting to hand over an older result.
	select {
	case c.superseded <- struct{}{}:
	default:
	}

	c.workers.Add(1)
	go c.run(ctx, gen, path)
	return gen, nil
}

func (c *Coordinator) run(ctx context.Context, gen uint64, path string) {
	defer c.workers.Done()

	start := time.Now()
	info, err := c.load(ctx, path)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	res := Result{Generation: gen, Path: path, Info: info, Err: err, Elapsed: time.Since(start)}

	select {
	case c.done <- res:
	case <-c.stop:
	}
}

// dispatch forwards results that are still current, in completion order.
func (c *Coordinator) dispatch() {
	defer close(c.stopped)
	for {
		var res Result
		select {
		case res = <-c.done:
		case <-c.stop:
			return
		}
		if !c.deliver(res) {
			return
		}
	}
}

func (c *Coordinator) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

// deliver hands res to the owner unless a newer request supersedes it first.
// It reports false once the coordinator is stopping.
func (c *Coordinator) deliver(res Result) bool {
	for {
		if !c.current(res.Generation) {
			c.log.Debug().Uint64("generation", res.Generation).Str("path", res.Path).Msg("Discarding superseded load")
			return true
		}
		select {
		case c.results <- res:
			c.mu.Lock()
			if res.Generation == c.gen {
				c.busy = false
				c.cancel()
			}
			c.mu.Unlock()
			if c.onIdle != nil {
				c.onIdle(res.Generation)
			}
			return true
		case <-c.superseded:
		case <-c.stop:
			return false
		}
	}
}

// Close cancels any running load, waits for workers to exit and closes the
// results channel. It is safe to call more than once.
func (c *Coordinator) Close() error {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		if c.cancel != nil {
			c.cancel()
		}
		c.mu.Unlock()

		close(c.stop)
		c.workers.Wait()
		<-c.stopped
		close(c.results)
	})
	return nil
}
