package fsc

import (
	"time"
)

// AuthStrategy acquires an authorization header value (e.g., "Basic ..." or "Bearer ...")
// for the platform boundary, when the local HAL endpoint requires one.
type AuthStrategy interface {
	AuthorizationValue() (string, error)
}

// StaticAuth implements AuthStrategy using a pre-specified token value.
type StaticAuth struct{ Value string }

func (s StaticAuth) AuthorizationValue() (string, error) { return s.Value, nil }

// Paths are the well-known filesystem locations the prober inspects. They are
// produced by external collaborators (operator tooling, firmware packaging,
// the network update client); this process only reads them.
type Paths struct {
	DebugOverride    string // presence forces the validation wait
	PrimaryVersion   string // preferred version descriptor
	SecondaryVersion string // fallback version descriptor
	RemoteResponse   string // update server response artifact
}

// Timing bounds the poll loop. The effective polling deadline is
// Timeout - SafetyOffset, leaving a margin before the OEM watchdog's own
// hard timeout fires.
type Timing struct {
	SampleInterval time.Duration
	Timeout        time.Duration
	SafetyOffset   time.Duration
}

// Deadline returns the effective polling deadline measured from loop start.
func (t Timing) Deadline() time.Duration { return t.Timeout - t.SafetyOffset }

// TimeoutSeconds is the value handed to the platform HAL, in whole seconds.
func (t Timing) TimeoutSeconds() int { return int(t.Timeout / time.Second) }

// Options configures the firmware sanity checker core.
type Options struct {
	Paths  Paths
	Timing Timing
}

// DefaultOptions gives the production paths and the 60 minute budget with a
// 5 minute startup offset.
func DefaultOptions() Options {
	opts := Options{}
	opts.Paths = Paths{
		DebugOverride:    "/nvram/forceFSC",
		PrimaryVersion:   "/fss/gw/version.txt",
		SecondaryVersion: "/version.txt",
		RemoteResponse:   "/tmp/response.txt",
	}
	opts.Timing = Timing{
		SampleInterval: 30 * time.Second,
		Timeout:        3600 * time.Second,
		SafetyOffset:   300 * time.Second,
	}
	return opts
}
