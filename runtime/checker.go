// Package runtime drives the sanity check: one bounded wait-then-decide
// cycle that probes the environment at a fixed interval until the verdict
// turns valid or the deadline elapses, then commits the result through the
// platform HAL.
package runtime

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	fsc "github.com/xmidt-org/fscmonitor"
	"github.com/xmidt-org/fscmonitor/platform"
)

// State of the checker's two-state machine.
type State int

const (
	StatePolling State = iota
	StateDone
)

func (s State) String() string {
	if s == StateDone {
		return "done"
	}
	return "polling"
}

// Prober is what the checker needs from the environment probe layer.
type Prober interface {
	DebugOverride() bool
	ClassifyImage() fsc.ImageClass
	FetchRemoteResponse() (fsc.RemoteResponse, bool)
}

// Config assembles a Checker.
type Config struct {
	Prober Prober       // required
	HAL    platform.HAL // required
	Clock  Clock        // optional; defaults to SystemClock()
	Timing fsc.Timing   // zero value takes fsc.DefaultOptions().Timing
	Logger *log.Logger  // optional; defaults to log.Default()
}

var (
	ErrNilProber = errors.New("checker: prober is nil")
	ErrNilHAL    = errors.New("checker: hal is nil")
)

// Snapshot is a point-in-time view of the run, served by the status API.
type Snapshot struct {
	RunID         string
	State         State
	DebugOverride bool
	ImageClass    fsc.ImageClass
	StartedAt     time.Time
	Elapsed       time.Duration
	Iterations    int
	ResponseSeen  bool
	LastResponse  fsc.RemoteResponse
	Verdict       *bool // nil until the run reaches Done
}

// Checker runs the poll loop. A Checker performs exactly one run.
type Checker struct {
	cfg   Config
	runID string

	mu   sync.RWMutex
	snap Snapshot
}

func New(cfg Config) (*Checker, error) {
	if cfg.Prober == nil {
		return nil, ErrNilProber
	}
	if cfg.HAL == nil {
		return nil, ErrNilHAL
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Timing == (fsc.Timing{}) {
		cfg.Timing = fsc.DefaultOptions().Timing
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	runID := uuid.NewString()
	return &Checker{
		cfg:   cfg,
		runID: runID,
		snap:  Snapshot{RunID: runID, State: StatePolling},
	}, nil
}

// Snapshot returns the current run state.
func (c *Checker) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Checker) update(fn func(*Snapshot)) {
	c.mu.Lock()
	fn(&c.snap)
	c.mu.Unlock()
}

// Run executes the full cycle and returns the final verdict. The timeout
// budget is reported to the HAL exactly once before any polling; the verdict
// is reported exactly once at the end, even when ctx is canceled mid-wait
// (the verdict is then a conservative false).
func (c *Checker) Run(ctx context.Context) bool {
	timing := c.cfg.Timing
	clock := c.cfg.Clock
	logger := c.cfg.Logger

	// Tell the platform what the image validation expiry time is.
	if err := c.cfg.HAL.SetDeviceCodeImageTimeout(ctx, timing.TimeoutSeconds()); err != nil {
		logger.Printf("error reporting image timeout to hal: %v", err)
	}

	debugOverride := c.cfg.Prober.DebugOverride()
	class := c.cfg.Prober.ClassifyImage()
	isProduction := class == fsc.ImageProduction
	c.update(func(s *Snapshot) {
		s.DebugOverride = debugOverride
		s.ImageClass = class
	})

	var valid bool
	if !debugOverride && !isProduction {
		// Engineering/lab build with no override: trusted by default,
		// no wait required.
		valid = true
	} else {
		start := clock.Now()
		c.update(func(s *Snapshot) { s.StartedAt = start })
		logger.Printf("starting firmware sanity checker wait (run %s)", c.runID)
		valid = c.poll(ctx, start, debugOverride, isProduction)
	}

	c.report(valid)
	c.update(func(s *Snapshot) {
		s.State = StateDone
		s.Verdict = &valid
	})
	logger.Printf("firmware sanity checker done, valid image: %t", valid)
	return valid
}

// poll is the Polling state: sleep an interval, re-probe, recombine, repeat
// until the verdict turns true or the effective deadline passes.
func (c *Checker) poll(ctx context.Context, start time.Time, debugOverride, isProduction bool) bool {
	timing := c.cfg.Timing
	clock := c.cfg.Clock
	logger := c.cfg.Logger

	for {
		if err := clock.Sleep(ctx, timing.SampleInterval); err != nil {
			logger.Printf("wait interrupted (%v), reporting image invalid", err)
			return false
		}
		elapsed := clock.Now().Sub(start)

		resp, seen := c.cfg.Prober.FetchRemoteResponse()
		valid := fsc.IsValid(debugOverride, isProduction, seen && resp.Valid)

		c.update(func(s *Snapshot) {
			s.Iterations++
			s.Elapsed = elapsed
			s.ResponseSeen = seen
			s.LastResponse = resp
		})

		if valid {
			return true
		}
		if elapsed >= timing.Deadline() {
			logger.Printf("time expired waiting for a valid server response")
			return false
		}
	}
}

// report commits the verdict. It runs on a fresh context so a canceled run
// still reaches the HAL with its conservative result.
func (c *Checker) report(valid bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.cfg.HAL.SetDeviceCodeImageValid(ctx, valid); err != nil {
		c.cfg.Logger.Printf("error reporting image validity to hal: %v", err)
	}
}
