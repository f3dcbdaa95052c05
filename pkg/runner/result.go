package runner

import (
	"errors"
	"strings"
	"time"
)

// Verdict is the three-way outcome of a completed run.
type Verdict string

const (
	// VerdictPassed means the harness reported a clean finish.
	VerdictPassed Verdict = "passed"

	// VerdictFailed means the harness reported test failures. This is an
	// expected business outcome, not a system error.
	VerdictFailed Verdict = "failed"

	// VerdictTimedOut means the watchdog fired with no console activity.
	VerdictTimedOut Verdict = "timed out"
)

// ErrBrowserNotFound indicates no browser installation resolved. This is a
// configuration problem and is never retried.
var ErrBrowserNotFound = errors.New("no browser installation found")

// ErrConnection indicates the debugging connection dropped before the
// harness reported completion.
var ErrConnection = errors.New("debugging connection error")

// State labels one stage of a run; the summary records every stage entered.
type State string

const (
	StateInit      State = "init"
	StateServing   State = "serving"
	StateLaunching State = "launching"
	StateTabFound  State = "tab-found"
	StateConnected State = "connected"
	StateRunning   State = "running"
	StatePassed    State = "passed"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed-out"
	StateErrored   State = "errored"
	StateTornDown  State = "torn-down"
)

// Result is the externally observable outcome of one run. Setup and internal
// failures travel on Run's error return instead.
type Result struct {
	// Verdict is the harness outcome.
	Verdict Verdict

	// Message is a short human-readable elaboration of the verdict.
	Message string

	// Summary records what the run did, for reporting.
	Summary Summary
}

// Summary records run progress for the final report.
type Summary struct {
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Duration       time.Duration `json:"duration"`
	States         []State       `json:"states"`
	ConsoleLines   int           `json:"console_lines"`
	BrowserVariant string        `json:"browser_variant"`
	DebugPort      int           `json:"debug_port"`
	PageURL        string        `json:"page_url"`
}

const (
	// sentinelText marks the console line carrying the harness verdict.
	sentinelText = "tests finished"

	// failureText within a sentinel line distinguishes fail from pass.
	failureText = "failed"
)

// interpretLine inspects one console line for the completion sentinel.
// Plain substring containment, unanchored; existing harnesses depend on the
// loose match.
func interpretLine(line string) (Verdict, bool) {
	if !strings.Contains(line, sentinelText) {
		return "", false
	}
	if strings.Contains(line, failureText) {
		return VerdictFailed, true
	}
	return VerdictPassed, true
}
