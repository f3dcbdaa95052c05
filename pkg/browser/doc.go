// Package browser locates installed Chrome-compatible browsers and manages
// launched browser processes for test runs.
//
// The package has two halves:
//
//  1. Resolver: probes canonical per-OS install locations for each known
//     Variant and returns the first existing executable. Resolution is
//     read-only and a missing browser is a normal outcome, not an error.
//  2. Process: a launched browser with an isolated, disposable profile
//     directory and remote debugging enabled. Exit state is tracked by an
//     asynchronous watcher, stdout/stderr are drained continuously so the
//     child can never block on a full pipe, and Kill is idempotent.
//
// # Lifecycle
//
//	resolver := browser.NewResolver()
//	inst, ok := resolver.ResolveBest(false)
//	if !ok {
//	    // no browser installed; report, don't panic
//	}
//	proc, err := browser.Launch(inst, browser.LaunchOptions{
//	    URL:       "http://127.0.0.1:51000/index.html",
//	    DebugPort: 33417,
//	})
//	defer func() {
//	    proc.Kill()
//	    proc.ReleaseProfile()
//	}()
//
// Each Process owns its profile directory exclusively; the directory is
// created at launch and must be released at teardown regardless of how the
// run ended.
package browser
