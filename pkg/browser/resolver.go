package browser

import (
	"os"
	"os/exec"
	"runtime"
	"sync"
)

// Installation describes a browser executable found on the host.
type Installation struct {
	// Variant is the browser family this executable belongs to.
	Variant Variant

	// ExecutablePath is the absolute path to the browser binary.
	ExecutablePath string
}

// runtimeBinaryName is the name of the runtime-bundled browser binary as it
// appears on the executable search path.
const runtimeBinaryName = "runtime-chrome"

// candidatePaths returns the canonical install locations for a variant on the
// given OS. An empty slice means the variant is never installed at a fixed
// location on that OS (the runtime variant is resolved via the search path).
func candidatePaths(v Variant, goos string) []string {
	switch goos {
	case "darwin":
		switch v {
		case VariantStable:
			return []string{"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"}
		case VariantDev:
			return []string{"/Applications/Google Chrome Dev.app/Contents/MacOS/Google Chrome Dev"}
		case VariantChromium:
			return []string{"/Applications/Chromium.app/Contents/MacOS/Chromium"}
		case VariantHeadlessShell:
			return []string{"/usr/local/bin/headless-shell"}
		}
	case "windows":
		switch v {
		case VariantStable:
			return []string{
				`C:\Program Files\Google\Chrome\Application\chrome.exe`,
				`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			}
		case VariantDev:
			return []string{`C:\Program Files\Google\Chrome Dev\Application\chrome.exe`}
		case VariantChromium:
			return []string{`C:\Program Files\Chromium\Application\chrome.exe`}
		case VariantHeadlessShell:
			return []string{`C:\Program Files\headless-shell\headless-shell.exe`}
		}
	default: // linux and friends
		switch v {
		case VariantStable:
			return []string{"/usr/bin/google-chrome", "/usr/bin/google-chrome-stable", "/opt/google/chrome/chrome"}
		case VariantDev:
			return []string{"/usr/bin/google-chrome-unstable", "/opt/google/chrome-unstable/chrome"}
		case VariantChromium:
			return []string{"/usr/bin/chromium", "/usr/bin/chromium-browser", "/snap/bin/chromium"}
		case VariantHeadlessShell:
			return []string{"/usr/bin/headless-shell", "/headless-shell/headless-shell"}
		}
	}
	return nil
}

// Resolver locates browser installations on the host. Construct one per
// process with NewResolver and pass it down; the runtime search-path probe is
// memoized on the resolver, never in package state, so tests stay isolated.
type Resolver struct {
	goos string

	// stat and lookPath are swappable for tests.
	stat     func(string) (os.FileInfo, error)
	lookPath func(string) (string, error)

	runtimeOnce sync.Once
	runtimePath string
}

// NewResolver creates a resolver for the current OS.
func NewResolver() *Resolver {
	return &Resolver{
		goos:     runtime.GOOS,
		stat:     os.Stat,
		lookPath: exec.LookPath,
	}
}

// Resolve probes the canonical locations for a single variant and returns the
// first existing executable. The second return is false when the variant is
// not installed; that is a normal outcome, not an error.
func (r *Resolver) Resolve(v Variant) (Installation, bool) {
	if v == VariantRuntime {
		if path := r.runtimeOnPath(); path != "" {
			return Installation{Variant: v, ExecutablePath: path}, true
		}
		return Installation{}, false
	}
	for _, path := range candidatePaths(v, r.goos) {
		if info, err := r.stat(path); err == nil && !info.IsDir() {
			return Installation{Variant: v, ExecutablePath: path}, true
		}
	}
	return Installation{}, false
}

// ResolveBest returns the first installed browser in priority order: Stable,
// Dev, Chromium, HeadlessShell, then the runtime-bundled browser as a final
// fallback. When preferRuntime is set the runtime browser is probed first and
// the rest of the order is unchanged.
func (r *Resolver) ResolveBest(preferRuntime bool) (Installation, bool) {
	order := []Variant{VariantStable, VariantDev, VariantChromium, VariantHeadlessShell, VariantRuntime}
	if preferRuntime {
		order = []Variant{VariantRuntime, VariantStable, VariantDev, VariantChromium, VariantHeadlessShell}
	}
	for _, v := range order {
		if inst, ok := r.Resolve(v); ok {
			return inst, true
		}
	}
	return Installation{}, false
}

// runtimeOnPath probes the executable search path for the runtime-bundled
// browser exactly once per resolver.
func (r *Resolver) runtimeOnPath() string {
	r.runtimeOnce.Do(func() {
		if path, err := r.lookPath(runtimeBinaryName); err == nil {
			r.runtimePath = path
		}
	})
	return r.runtimePath
}
