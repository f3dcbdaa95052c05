// Package runner orchestrates one browser test run end to end.
//
// A run walks a fixed sequence of stages: resolve a browser installation,
// serve the harness directory, launch the browser with remote debugging
// enabled, poll for the tab hosting the harness page, attach a console
// session, then consume console output until the harness emits its
// completion sentinel or the idle watchdog fires.
//
//	┌─────────────────────────────────────────────────────┐
//	│                      Runner                         │
//	│  resolve → serve → launch → find tab → connect      │
//	│                 │                                   │
//	│                 ▼                                   │
//	│   console events  ◄──race──►  idle watchdog         │
//	│                 │                                   │
//	│                 ▼                                   │
//	│   passed / failed / timed out / error               │
//	└──────────────────────┬──────────────────────────────┘
//	                       ▼
//	              teardown (exactly once)
//
// # Completion protocol
//
// The harness signals completion by logging a line containing the sentinel
// text to the browser console; a failure marker inside that line decides the
// verdict. Any other console line only resets the watchdog and is forwarded
// to the log sink live. The first of {sentinel line, watchdog firing,
// connection error, context cancellation} wins and drives teardown.
//
// # Teardown
//
// Teardown runs exactly once on every exit path. It unsubscribes from the
// console stream first, so no queued events are acted upon afterwards, then
// kills the browser process, removes its profile directory, stops the
// harness server and cancels the watchdog. Each step is best-effort; a
// failure releasing one resource never prevents attempting the others, and
// teardown failures never mask the run's verdict.
package runner
