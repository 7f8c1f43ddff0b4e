package fsc

// ImageClass describes what kind of firmware image the device is running.
type ImageClass int

const (
	// ImageProduction is a build intended for end-customer deployment; the
	// remote validation wait is mandatory.
	ImageProduction ImageClass = iota
	// ImageDebugOrOther covers debug/VBN/lab builds, trusted by default.
	ImageDebugOrOther
)

func (c ImageClass) String() string {
	switch c {
	case ImageProduction:
		return "production"
	case ImageDebugOrOther:
		return "debug/other"
	default:
		return "unknown"
	}
}

// RemoteResponse is the parsed outcome of the update server's response
// artifact. Valid is true only when a non-empty firmware filename was
// extracted.
type RemoteResponse struct {
	FirmwareFilename string
	Valid            bool
}

// Signals are the three independent boolean inputs to the verdict.
// DebugOverride and IsProduction are established once at startup;
// RemoteValid is refreshed on every poll iteration.
type Signals struct {
	DebugOverride bool
	IsProduction  bool
	RemoteValid   bool
}

// IsValid combines the three probe signals into the image verdict. If
// neither the debug override nor production classification applies, no
// remote validation is required and the image is trusted by default.
// Otherwise a valid remote response is mandatory.
func IsValid(debugOverride, isProduction, remoteValid bool) bool {
	return (debugOverride && remoteValid) || (isProduction && remoteValid) ||
		(!debugOverride && !isProduction)
}

// Valid applies IsValid to the signal set.
func (s Signals) Valid() bool {
	return IsValid(s.DebugOverride, s.IsProduction, s.RemoteValid)
}
