// Package platform is the boundary to the OEM platform abstraction layer,
// which owns the actual bank switch and validity marking. Calls are
// best-effort: the OEM side runs its own watchdog, so failures are logged
// and never retried.
package platform

import (
	"context"
	"log"
)

// HAL exposes the two platform operations the sanity checker needs.
type HAL interface {
	// SetDeviceCodeImageTimeout informs the platform of the image
	// validation expiry budget, in seconds.
	SetDeviceCodeImageTimeout(ctx context.Context, seconds int) error
	// SetDeviceCodeImageValid commits the final verdict.
	SetDeviceCodeImageValid(ctx context.Context, valid bool) error
}

// LogHAL is a stand-in for lab builds with no platform agent: it records the
// calls in the diagnostic log and succeeds.
type LogHAL struct{ Logger *log.Logger }

func (l LogHAL) logger() *log.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return log.Default()
}

func (l LogHAL) SetDeviceCodeImageTimeout(_ context.Context, seconds int) error {
	l.logger().Printf("hal (log only): SetDeviceCodeImageTimeout(%d)", seconds)
	return nil
}

func (l LogHAL) SetDeviceCodeImageValid(_ context.Context, valid bool) error {
	l.logger().Printf("hal (log only): SetDeviceCodeImageValid(%t)", valid)
	return nil
}
