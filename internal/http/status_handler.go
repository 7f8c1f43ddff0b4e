package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/xmidt-org/fscmonitor/runtime"
)

// StatusSource provides the current checker snapshot.
type StatusSource interface {
	Snapshot() runtime.Snapshot
}

// StatusInfo is the wire form of the checker snapshot.
// Minimal for operator visibility during the wait; can be extended later.
type StatusInfo struct {
	RunID            string    `json:"runId"`
	State            string    `json:"state"`
	DebugOverride    bool      `json:"debugOverride"`
	ImageClass       string    `json:"imageClass"`
	StartedAt        time.Time `json:"startedAt,omitempty"`
	ElapsedSeconds   int       `json:"elapsedSeconds"`
	Iterations       int       `json:"iterations"`
	ServerResponded  bool      `json:"serverResponded"`
	FirmwareFilename string    `json:"firmwareFilename,omitempty"`
	Verdict          *bool     `json:"verdict,omitempty"`
}

// StatusHandler builds an HTTP handler serving the current checker snapshot.
func StatusHandler(src StatusSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := src.Snapshot()
		out := StatusInfo{
			RunID:            snap.RunID,
			State:            snap.State.String(),
			DebugOverride:    snap.DebugOverride,
			ImageClass:       snap.ImageClass.String(),
			ElapsedSeconds:   int(snap.Elapsed.Seconds()),
			Iterations:       snap.Iterations,
			ServerResponded:  snap.ResponseSeen,
			FirmwareFilename: snap.LastResponse.FirmwareFilename,
			Verdict:          snap.Verdict,
		}
		if !snap.StartedAt.IsZero() {
			out.StartedAt = snap.StartedAt
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	}
}
