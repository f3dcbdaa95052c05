package runner

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/browsertest/pkg/browser"
	"github.com/entrhq/browsertest/pkg/config"
	"github.com/entrhq/browsertest/pkg/devtools"
	"github.com/entrhq/browsertest/pkg/logging"
	"github.com/entrhq/browsertest/pkg/server"
)

// debugHost is where the browser binds its remote debugging endpoint.
const debugHost = "127.0.0.1"

// exitGrace bounds how long teardown waits for the killed browser to exit
// before removing the profile directory it may still be writing.
const exitGrace = 3 * time.Second

// harnessServer is the static server collaborator, consumed as a black box.
type harnessServer interface {
	Start(port int, rootPath string) error
	Host() string
	Port() int
	BaseURL() string
	Stop() error
}

// installResolver locates browser installations.
type installResolver interface {
	Resolve(v browser.Variant) (browser.Installation, bool)
	ResolveBest(preferRuntime bool) (browser.Installation, bool)
}

// browserProcess is the slice of browser.Process the orchestrator needs.
type browserProcess interface {
	Kill()
	ReleaseProfile() error
	ExitCode() (int, bool)
	Running() bool
	Done() <-chan struct{}
}

// consoleSession is an open debugging connection streaming console events.
type consoleSession interface {
	Events() <-chan devtools.ConsoleEvent
	Err() error
	Close()
}

// debugClient finds the harness tab and opens console sessions.
type debugClient interface {
	FindTab(ctx context.Context, host string, port int, predicate func(devtools.Tab) bool, retryFor time.Duration) (devtools.Tab, error)
	Connect(ctx context.Context, tab devtools.Tab) (consoleSession, error)
}

// devtoolsClient adapts *devtools.Client to the debugClient interface.
type devtoolsClient struct {
	*devtools.Client
}

func (c devtoolsClient) Connect(ctx context.Context, tab devtools.Tab) (consoleSession, error) {
	return c.Client.Connect(ctx, tab)
}

// Runner orchestrates one browser test run: serve the harness, launch the
// browser, attach to the harness tab, watch console output under an idle
// watchdog, and release everything it acquired on the way out. A Runner is
// single-use; create a fresh one per run.
type Runner struct {
	cfg *config.Config
	log *logging.Logger

	server   harnessServer
	resolver installResolver
	launch   func(browser.Installation, browser.LaunchOptions) (browserProcess, error)
	client   debugClient
	pickPort func(min, max int) int
	getenv   func(string) string

	summary Summary

	teardownOnce sync.Once
	session      consoleSession
	proc         browserProcess
	watchdog     *Watchdog
}

// New creates a runner wired to the real collaborators.
func New(cfg *config.Config, log *logging.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		log:      log,
		server:   &server.Harness{},
		resolver: browser.NewResolver(),
		launch: func(inst browser.Installation, opts browser.LaunchOptions) (browserProcess, error) {
			return browser.Launch(inst, opts)
		},
		client:   devtoolsClient{devtools.NewClient()},
		pickPort: func(min, max int) int { return min + rand.Intn(max-min+1) },
		getenv:   os.Getenv,
	}
}

// Run drives one complete test run. Business outcomes (passed, failed,
// timed out) come back as a Result; setup and internal failures come back on
// the error return. Either way every acquired resource is released before
// Run returns.
func (r *Runner) Run(ctx context.Context) (res *Result, err error) {
	r.summary.StartTime = time.Now()
	r.enterState(StateInit)

	defer func() {
		r.teardown()
		r.summary.EndTime = time.Now()
		r.summary.Duration = r.summary.EndTime.Sub(r.summary.StartTime)
		if res != nil {
			res.Summary = r.summary
		}
	}()

	tabPattern, err := r.cfg.CompileTabPattern()
	if err != nil {
		r.enterState(StateErrored)
		return nil, err
	}

	// Resolve the browser before touching anything else: a missing browser
	// is a configuration problem and must fail fast, before a server or
	// process is spawned.
	inst, ok := r.resolveInstallation()
	if !ok {
		r.enterState(StateErrored)
		return nil, ErrBrowserNotFound
	}
	r.summary.BrowserVariant = inst.Variant.String()
	r.log.Infof("resolved browser: %s (%s)", inst.ExecutablePath, inst.Variant)

	r.enterState(StateServing)
	if err := r.server.Start(r.cfg.Harness.ServerPort, r.cfg.Harness.Dir); err != nil {
		r.enterState(StateErrored)
		return nil, err
	}
	pageURL := r.server.BaseURL() + "/" + r.cfg.Harness.File
	r.summary.PageURL = pageURL
	r.log.Infof("serving harness %s at %s", r.cfg.Harness.Dir, pageURL)

	r.enterState(StateLaunching)
	debugPort := r.pickPort(r.cfg.Browser.DebugPortMin, r.cfg.Browser.DebugPortMax)
	r.summary.DebugPort = debugPort

	proc, err := r.launch(inst, browser.LaunchOptions{
		URL:       pageURL,
		DebugPort: debugPort,
		ExtraArgs: r.launchArgs(),
		Logf:      r.log.Debugf,
	})
	if err != nil {
		r.enterState(StateErrored)
		return nil, err
	}
	r.proc = proc
	r.log.Infof("browser launched, remote debugging on port %d", debugPort)

	predicate := devtools.MatchHarness(pageURL, r.cfg.Harness.File)
	if tabPattern != nil {
		base := predicate
		predicate = func(tab devtools.Tab) bool {
			return base(tab) || tabPattern.Match(tab.URL)
		}
	}

	tab, err := r.client.FindTab(ctx, debugHost, debugPort, predicate, r.cfg.Timing.TabRetry)
	if err != nil {
		r.enterState(StateErrored)
		return nil, err
	}
	r.enterState(StateTabFound)
	r.log.Infof("harness tab found: %s", tab.URL)

	session, err := r.client.Connect(ctx, tab)
	if err != nil {
		r.enterState(StateErrored)
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	r.session = session
	r.enterState(StateConnected)

	r.watchdog = NewWatchdog(r.cfg.Timing.Watchdog)
	r.enterState(StateRunning)

	return r.consume(ctx, session)
}

// consume races the console event stream against the watchdog and the run
// context; the first to signal decides the outcome.
func (r *Runner) consume(ctx context.Context, session consoleSession) (*Result, error) {
	for {
		select {
		case <-ctx.Done():
			r.enterState(StateErrored)
			return nil, ctx.Err()

		case <-r.watchdog.C():
			r.enterState(StateTimedOut)
			return r.result(VerdictTimedOut, "tests timed out"), nil

		case ev, open := <-session.Events():
			if !open {
				r.enterState(StateErrored)
				if err := session.Err(); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrConnection, err)
				}
				return nil, fmt.Errorf("%w: console stream ended before tests finished", ErrConnection)
			}

			r.watchdog.Reset()
			r.summary.ConsoleLines++
			r.log.Console(ev.Text)

			if verdict, terminal := interpretLine(ev.Text); terminal {
				switch verdict {
				case VerdictFailed:
					r.enterState(StateFailed)
					return r.result(VerdictFailed, "tests failed"), nil
				default:
					r.enterState(StatePassed)
					return r.result(VerdictPassed, "tests passed"), nil
				}
			}
		}
	}
}

// resolveInstallation honors a pinned variant when configured, otherwise
// picks the best available browser.
func (r *Runner) resolveInstallation() (browser.Installation, bool) {
	if v := r.cfg.Browser.Variant; v != "" {
		return r.resolver.Resolve(browser.Variant(v))
	}
	return r.resolver.ResolveBest(r.cfg.Browser.PreferRuntime)
}

// launchArgs combines configured extra args, environment-supplied extra args
// and the headless flag.
func (r *Runner) launchArgs() []string {
	args := append([]string{}, r.cfg.Browser.ExtraArgs...)
	if env := r.cfg.Browser.ExtraArgsEnv; env != "" {
		args = append(args, strings.Fields(r.getenv(env))...)
	}
	if r.cfg.Browser.Headless {
		args = append(args, "--headless=new")
	}
	return args
}

// teardown releases everything the run acquired: unsubscribes from console
// events first so no further events are acted upon, then kills the browser,
// removes its profile, stops the harness server and cancels the watchdog.
// Runs at most once; every step is best-effort and a failure in one never
// prevents the others.
func (r *Runner) teardown() {
	r.teardownOnce.Do(func() {
		if r.session != nil {
			r.session.Close()
		}
		if r.watchdog != nil {
			r.watchdog.Stop()
		}
		if r.proc != nil {
			r.proc.Kill()
			select {
			case <-r.proc.Done():
			case <-time.After(exitGrace):
				r.log.Warnf("browser did not exit within %s, removing profile anyway", exitGrace)
			}
			if err := r.proc.ReleaseProfile(); err != nil {
				r.log.Warnf("failed to remove profile dir: %v", err)
			}
		}
		if err := r.server.Stop(); err != nil {
			r.log.Warnf("failed to stop harness server: %v", err)
		}
		r.enterState(StateTornDown)
		r.log.Debugf("teardown complete")
	})
}

// result finalizes the run outcome.
func (r *Runner) result(v Verdict, message string) *Result {
	return &Result{Verdict: v, Message: message, Summary: r.summary}
}

// Summary returns the run summary recorded so far.
func (r *Runner) Summary() Summary {
	return r.summary
}

// enterState records a state transition.
func (r *Runner) enterState(s State) {
	r.summary.States = append(r.summary.States, s)
	r.log.Debugf("state: %s", s)
}
