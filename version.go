package cachebench

import (
	"runtime/debug"
)

const root = "github.com/Furetur/l1-cache-benchmark"

// Version returns the main module's version and checksum of the running
// binary. Both are empty outside module-built binaries; an untagged build
// reports whatever the toolchain stamped, typically "(devel)".
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	return moduleVersion(b.Main)
}

func moduleVersion(m debug.Module) (version, sum string) {
	if m.Version == "(devel)" {
		return "", m.Sum
	}
	return m.Version, m.Sum
}
