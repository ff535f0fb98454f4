package cachebench

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionResolvesFromMainModule(t *testing.T) {
	b, ok := debug.ReadBuildInfo()
	require.True(t, ok)

	// This module is the binary's main module, so it is recorded in
	// BuildInfo.Main and never appears in BuildInfo.Deps.
	assert.Equal(t, root, b.Main.Path)
	for _, dep := range b.Deps {
		assert.NotEqual(t, root, dep.Path)
	}

	version, sum := Version()
	wantVersion, wantSum := moduleVersion(b.Main)
	assert.Equal(t, wantVersion, version)
	assert.Equal(t, wantSum, sum)
}

func TestModuleVersionOfTaggedBuild(t *testing.T) {
	version, sum := moduleVersion(debug.Module{
		Path:    root,
		Version: "v1.4.0",
		Sum:     "h1:0hLQKpgC53OVF1VT7CeoFHk9YKstur1XOgfYIc1yrHI=",
	})
	assert.Equal(t, "v1.4.0", version)
	assert.Equal(t, "h1:0hLQKpgC53OVF1VT7CeoFHk9YKstur1XOgfYIc1yrHI=", sum)
}

func TestModuleVersionOfDevelBuild(t *testing.T) {
	// Untagged builds are stamped "(devel)"; the caller substitutes its own
	// placeholder for the empty version.
	version, _ := moduleVersion(debug.Module{Path: root, Version: "(devel)"})
	assert.Equal(t, "", version)
}
