// Package main provides the browsertest command: run a browser-hosted test
// suite and report whether it passed, failed or timed out. The tool serves
// the harness directory, launches a locally installed browser against it,
// observes the page console over the remote debugging protocol and decides
// the verdict from the harness completion sentinel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	appconfig "github.com/entrhq/browsertest/pkg/config"
	"github.com/entrhq/browsertest/pkg/logging"
	"github.com/entrhq/browsertest/pkg/runner"
	"github.com/entrhq/browsertest/pkg/security/workspace"
	"github.com/entrhq/browsertest/pkg/ui"
)

const version = "0.1.0" // Version of the browsertest tool

// Exit codes toward CI: distinct values per outcome class.
const (
	exitPassed   = 0
	exitFailed   = 1
	exitTimedOut = 2
	exitError    = 3
)

// cliFlags holds the raw command line values before they are folded into the
// run configuration.
type cliFlags struct {
	ConfigPath    string
	HarnessDir    string
	HarnessFile   string
	Variant       string
	PreferRuntime bool
	Headless      bool
	Watchdog      time.Duration
	TabRetry      time.Duration
	ShowVersion   bool
}

func main() {
	flags := parseFlags()

	if flags.ShowVersion {
		fmt.Printf("browsertest v%s\n", version)
		return
	}

	cfg, err := buildConfig(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(exitError)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, tearing down...")
		cancel()
	}()

	os.Exit(run(ctx, cfg))
}

// parseFlags parses command line flags
func parseFlags() *cliFlags {
	flags := &cliFlags{}

	flag.StringVar(&flags.ConfigPath, "config", "", "Path to YAML run configuration (optional)")
	flag.StringVar(&flags.HarnessDir, "harness", "", "Directory containing the test harness (required unless set in config)")
	flag.StringVar(&flags.HarnessFile, "file", "", "Harness page served from the harness directory (default: index.html)")
	flag.StringVar(&flags.Variant, "browser", "", "Pin a browser variant: stable, dev, chromium, runtime, headless-shell")
	flag.BoolVar(&flags.PreferRuntime, "prefer-runtime", false, "Probe the runtime-bundled browser before installed channels")
	flag.BoolVar(&flags.Headless, "headless", false, "Launch the browser headless")
	flag.DurationVar(&flags.Watchdog, "watchdog", 0, "Idle timeout with no console activity (default: 60s)")
	flag.DurationVar(&flags.TabRetry, "tab-retry", 0, "Budget for locating the harness tab (default: 10s)")
	flag.BoolVar(&flags.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "browsertest - run browser-hosted test suites\n\n")
		fmt.Fprintf(os.Stderr, "Usage: browsertest [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s    Extra space-separated browser launch arguments\n", appconfig.DefaultExtraArgsEnv)
		fmt.Fprintf(os.Stderr, "\nExit codes:\n")
		fmt.Fprintf(os.Stderr, "  0 tests passed, 1 tests failed, 2 timed out, 3 setup or internal error\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  browsertest -harness ./test/web\n")
		fmt.Fprintf(os.Stderr, "  browsertest -harness ./test/web -file suite.html -headless\n")
		fmt.Fprintf(os.Stderr, "  browsertest -config browsertest.yaml -watchdog 2m\n")
	}

	flag.Parse()
	return flags
}

// buildConfig folds the optional config file and flag overrides into a
// validated run configuration.
func buildConfig(flags *cliFlags) (*appconfig.Config, error) {
	cfg := appconfig.DefaultConfig()
	if flags.ConfigPath != "" {
		loaded, err := appconfig.LoadFile(flags.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Flags override file values.
	if flags.HarnessDir != "" {
		cfg.Harness.Dir = flags.HarnessDir
	}
	if flags.HarnessFile != "" {
		cfg.Harness.File = flags.HarnessFile
	}
	if flags.Variant != "" {
		cfg.Browser.Variant = flags.Variant
	}
	if flags.PreferRuntime {
		cfg.Browser.PreferRuntime = true
	}
	if flags.Headless {
		cfg.Browser.Headless = true
	}
	if flags.Watchdog > 0 {
		cfg.Timing.Watchdog = flags.Watchdog
	}
	if flags.TabRetry > 0 {
		cfg.Timing.TabRetry = flags.TabRetry
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// The harness directory is served wholesale; make sure it exists and
	// the page path cannot escape it.
	guard, err := workspace.NewGuard(cfg.Harness.Dir)
	if err != nil {
		return nil, err
	}
	if err := guard.ValidatePage(cfg.Harness.File); err != nil {
		return nil, err
	}
	cfg.Harness.Dir = guard.Root()

	return cfg, nil
}

// run executes one test run and maps its outcome to an exit code.
func run(ctx context.Context, cfg *appconfig.Config) int {
	log, logErr := logging.NewLogger("main")
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", logErr)
	}
	defer log.Close()

	log.Infof("browsertest v%s starting, run %s", version, log.RunID())

	res, err := runner.New(cfg, log).Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Run cancelled")
			return exitError
		}
		log.Errorf("run failed: %v", err)
		fmt.Fprint(os.Stderr, ui.RenderError(err))
		return exitError
	}

	fmt.Print(ui.RenderResult(res))
	log.Infof("run finished: %s in %s", res.Verdict, res.Summary.Duration)

	switch res.Verdict {
	case runner.VerdictPassed:
		return exitPassed
	case runner.VerdictFailed:
		return exitFailed
	default:
		return exitTimedOut
	}
}
