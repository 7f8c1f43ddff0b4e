package fsc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTruthTable(t *testing.T) {
	cases := []struct {
		debugOverride bool
		isProduction  bool
		remoteValid   bool
		want          bool
	}{
		{false, false, false, true},
		{false, false, true, true},
		{true, false, false, false},
		{true, false, true, true},
		{false, true, false, false},
		{false, true, true, true},
		{true, true, false, false},
		{true, true, true, true},
	}
	for _, tc := range cases {
		got := IsValid(tc.debugOverride, tc.isProduction, tc.remoteValid)
		assert.Equalf(t, tc.want, got, "IsValid(%t, %t, %t)",
			tc.debugOverride, tc.isProduction, tc.remoteValid)
		s := Signals{DebugOverride: tc.debugOverride, IsProduction: tc.isProduction, RemoteValid: tc.remoteValid}
		assert.Equal(t, tc.want, s.Valid())
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, "/fss/gw/version.txt", opts.Paths.PrimaryVersion)
	assert.Equal(t, "/version.txt", opts.Paths.SecondaryVersion)
	assert.Equal(t, 3600, opts.Timing.TimeoutSeconds())
	// 3600 - 300: the loop must give up before the OEM watchdog does.
	assert.Equal(t, 3300, int(opts.Timing.Deadline().Seconds()))
}
