package browser

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFileInfo satisfies os.FileInfo for resolver tests.
type fakeFileInfo struct {
	name string
	dir  bool
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() os.FileMode  { return 0o755 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return f.dir }
func (f fakeFileInfo) Sys() interface{}   { return nil }

// newFakeResolver returns a linux resolver whose filesystem contains exactly
// the given paths and whose search path contains the given binaries.
func newFakeResolver(existing map[string]bool, onPath map[string]string) *Resolver {
	return &Resolver{
		goos: "linux",
		stat: func(path string) (os.FileInfo, error) {
			if dir, ok := existing[path]; ok {
				return fakeFileInfo{name: path, dir: dir}, nil
			}
			return nil, os.ErrNotExist
		},
		lookPath: func(name string) (string, error) {
			if path, ok := onPath[name]; ok {
				return path, nil
			}
			return "", errors.New("not found")
		},
	}
}

func TestResolve_StablePresent(t *testing.T) {
	r := newFakeResolver(map[string]bool{"/usr/bin/google-chrome": false}, nil)

	inst, ok := r.Resolve(VariantStable)
	require.True(t, ok)
	assert.Equal(t, VariantStable, inst.Variant)
	assert.Equal(t, "/usr/bin/google-chrome", inst.ExecutablePath)
}

func TestResolve_SkipsDirectories(t *testing.T) {
	// A directory at a candidate path must not resolve.
	r := newFakeResolver(map[string]bool{"/usr/bin/google-chrome": true}, nil)

	_, ok := r.Resolve(VariantStable)
	assert.False(t, ok)
}

func TestResolve_SecondCandidateWins(t *testing.T) {
	r := newFakeResolver(map[string]bool{"/usr/bin/chromium-browser": false}, nil)

	inst, ok := r.Resolve(VariantChromium)
	require.True(t, ok)
	assert.Equal(t, "/usr/bin/chromium-browser", inst.ExecutablePath)
}

func TestResolveBest_PriorityOrder(t *testing.T) {
	tests := []struct {
		name          string
		existing      map[string]bool
		onPath        map[string]string
		preferRuntime bool
		wantVariant   Variant
		wantOK        bool
	}{
		{
			name: "stable beats chromium",
			existing: map[string]bool{
				"/usr/bin/google-chrome": false,
				"/usr/bin/chromium":      false,
			},
			wantVariant: VariantStable,
			wantOK:      true,
		},
		{
			name:        "dev when stable missing",
			existing:    map[string]bool{"/usr/bin/google-chrome-unstable": false},
			wantVariant: VariantDev,
			wantOK:      true,
		},
		{
			name:        "runtime is the last fallback",
			onPath:      map[string]string{runtimeBinaryName: "/opt/sdk/bin/runtime-chrome"},
			wantVariant: VariantRuntime,
			wantOK:      true,
		},
		{
			name: "preferRuntime probes runtime first",
			existing: map[string]bool{
				"/usr/bin/google-chrome": false,
			},
			onPath:        map[string]string{runtimeBinaryName: "/opt/sdk/bin/runtime-chrome"},
			preferRuntime: true,
			wantVariant:   VariantRuntime,
			wantOK:        true,
		},
		{
			name:   "nothing installed",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeResolver(tt.existing, tt.onPath)
			inst, ok := r.ResolveBest(tt.preferRuntime)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantVariant, inst.Variant)
			}
		})
	}
}

func TestRuntimeProbeMemoized(t *testing.T) {
	calls := 0
	r := newFakeResolver(nil, nil)
	r.lookPath = func(name string) (string, error) {
		calls++
		return "/opt/sdk/bin/" + name, nil
	}

	for i := 0; i < 3; i++ {
		_, ok := r.Resolve(VariantRuntime)
		require.True(t, ok)
	}
	assert.Equal(t, 1, calls, "search path probe should run once per resolver")
}

func TestVariantValid(t *testing.T) {
	assert.True(t, VariantStable.Valid())
	assert.True(t, VariantHeadlessShell.Valid())
	assert.False(t, Variant("firefox").Valid())
}
