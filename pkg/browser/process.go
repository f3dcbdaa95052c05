package browser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
)

// ErrLaunchFailed indicates the browser executable could not be spawned.
// It is terminal; launching is never retried.
var ErrLaunchFailed = errors.New("browser launch failed")

// LaunchOptions configures a browser process launch.
type LaunchOptions struct {
	// URL is the page the browser opens on startup.
	URL string

	// DebugPort is the remote debugging port passed to the browser.
	DebugPort int

	// ExtraArgs are appended after the fixed argument set and before the URL.
	ExtraArgs []string

	// Env is an overlay of KEY=VALUE entries appended to the parent
	// environment.
	Env []string

	// Logf receives one call per line of browser stdout/stderr. May be nil.
	Logf func(format string, args ...interface{})
}

// Process is a launched browser with an exclusive, disposable profile
// directory. Exit state is recorded asynchronously by a watcher goroutine;
// no other writer touches it.
type Process struct {
	// Installation is the executable this process was launched from.
	Installation Installation

	// ProfileDir is the per-run user data directory. Owned exclusively by
	// this process and removed by ReleaseProfile.
	ProfileDir string

	cmd  *exec.Cmd
	logf func(format string, args ...interface{})

	drains sync.WaitGroup
	done   chan struct{}

	mu       sync.Mutex
	exitCode *int

	killOnce sync.Once
}

// buildArgs assembles the fixed launch argument set, extra args, then the URL.
func buildArgs(profileDir string, opts LaunchOptions) []string {
	args := []string{
		"--no-default-browser-check",
		"--no-first-run",
		"--user-data-dir=" + profileDir,
		"--remote-debugging-port=" + strconv.Itoa(opts.DebugPort),
	}
	args = append(args, opts.ExtraArgs...)
	return append(args, opts.URL)
}

// Launch spawns inst with a fresh profile directory and remote debugging
// enabled. The returned process is already running; its stdout and stderr are
// drained continuously and forwarded line-by-line to opts.Logf so the child
// can never block on a full pipe. Spawn errors surface as ErrLaunchFailed.
func Launch(inst Installation, opts LaunchOptions) (*Process, error) {
	profileDir, err := os.MkdirTemp("", "browsertest-profile-*")
	if err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}

	cmd := exec.Command(inst.ExecutablePath, buildArgs(profileDir, opts)...)
	cmd.Env = append(os.Environ(), opts.Env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("%w: stdout pipe: %v", ErrLaunchFailed, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("%w: stderr pipe: %v", ErrLaunchFailed, err)
	}

	if err := cmd.Start(); err != nil {
		os.RemoveAll(profileDir)
		return nil, fmt.Errorf("%w: %v", ErrLaunchFailed, err)
	}

	p := &Process{
		Installation: inst,
		ProfileDir:   profileDir,
		cmd:          cmd,
		logf:         logf,
		done:         make(chan struct{}),
	}

	p.drains.Add(2)
	go p.drain("stdout", stdout)
	go p.drain("stderr", stderr)
	go p.watch()

	return p, nil
}

// drain forwards one stream of child output to the log sink line-by-line.
// It runs until the pipe closes; stopping early could deadlock the child.
func (p *Process) drain(name string, r io.Reader) {
	defer p.drains.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.logf("browser %s: %s", name, scanner.Text())
	}
}

// watch records the exit code once the OS reports termination. Wait closes
// the parent pipe ends, so it must not run until both drains have read EOF or
// trailing output would be lost.
func (p *Process) watch() {
	p.drains.Wait()
	err := p.cmd.Wait()

	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}

	p.mu.Lock()
	p.exitCode = &code
	p.mu.Unlock()
	close(p.done)
}

// PID returns the operating system process ID.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Running reports whether the process has not yet been observed to exit.
func (p *Process) Running() bool {
	_, exited := p.ExitCode()
	return !exited
}

// ExitCode returns the recorded exit code and whether the process has exited.
func (p *Process) ExitCode() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exitCode == nil {
		return 0, false
	}
	return *p.exitCode, true
}

// Done is closed once the exit watcher has recorded the exit code.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Kill sends a termination signal to the browser. It is idempotent, does not
// wait for exit, and is a no-op once the process is already gone.
func (p *Process) Kill() {
	p.killOnce.Do(func() {
		if p.Running() {
			_ = p.cmd.Process.Kill()
		}
	})
}

// ReleaseProfile removes the profile directory. Safe to call more than once.
func (p *Process) ReleaseProfile() error {
	return os.RemoveAll(p.ProfileDir)
}
