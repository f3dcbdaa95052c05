// Package devtools is a minimal client for the browser remote debugging
// endpoint: enough to enumerate open tabs and stream console messages from
// one of them, nothing more.
//
// Tab discovery goes over the debugging HTTP endpoint (GET /json). The
// endpoint comes up asynchronously after browser launch, so ListTabs is
// expected to fail with connection-refused for a short while; FindTab wraps
// it in a bounded polling loop and is the only retry mechanism in the
// package.
//
// Console observation uses a persistent WebSocket connection to a tab's
// debugger socket. Connect enables console notifications and exposes the
// incoming messages as a channel of ConsoleEvent. The stream ends when the
// connection closes, from either side; it never reconnects on its own.
package devtools
