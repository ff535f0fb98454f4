//go:build !amd64
// +build !amd64

package cachebench

// NewTSCClock is unavailable without the time stamp counter.
func NewTSCClock() (Clock, error) {
	return nil, NewInvalidArgError("NewTSCClock",
		"TSC timing is only supported on amd64", nil)
}
