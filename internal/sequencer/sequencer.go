// Package sequencer runs the ordered, fail-fast boot sequence that prepares
// the Winning Ticket application and hands the process over to its server.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/winningticket/launcher/internal/config"
)

// databaseSettleDelay is the fixed wait applied when DATABASE_URL is set.
// It is a blind settle delay, not a connectivity probe.
const databaseSettleDelay = 2 * time.Second

// adminSeedScript creates the default admin account if it does not exist.
// Run through manage.py shell so it executes inside the app's ORM setup.
const adminSeedScript = `from django.contrib.auth import get_user_model
U = get_user_model()
U.objects.filter(username="admin").exists() or U.objects.create_superuser("admin", "admin@example.com", "admin123")`

// StepError is a boot step failure. ExitCode is what the launcher process
// should exit with when the step was fatal.
type StepError struct {
	Step     string
	ExitCode int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Sequencer executes the boot sequence for one container start. The process
// collaborators are swappable so tests never spawn python or gunicorn.
type Sequencer struct {
	cfg *config.Config
	log *slog.Logger

	runCommand func(ctx context.Context, dir string, argv []string) error
	sleep      func(d time.Duration)
	lookPath   func(file string) (string, error)
	execve     func(argv0 string, argv, env []string) error
	environ    func() []string
}

func New(cfg *config.Config, log *slog.Logger) *Sequencer {
	return &Sequencer{
		cfg:        cfg,
		log:        log,
		runCommand: runCommand,
		sleep:      time.Sleep,
		lookPath:   exec.LookPath,
		execve:     replaceProcess,
		environ:    os.Environ,
	}
}

// Run executes the full sequence: preparation, then handoff. On a successful
// handoff it never returns.
func (s *Sequencer) Run(ctx context.Context) error {
	if err := s.Prepare(ctx); err != nil {
		return err
	}
	return s.Handoff()
}

// Prepare runs every step before the server handoff, in fixed order, aborting
// on the first fatal failure.
func (s *Sequencer) Prepare(ctx context.Context) error {
	prof, ok := config.ProfileByName(string(s.cfg.Profile))
	if !ok {
		return fmt.Errorf("unknown boot profile %q", s.cfg.Profile)
	}

	s.log.Info("boot starting",
		"profile", string(prof.ID),
		"port", s.cfg.Port,
		"debug", s.cfg.Debug,
	)

	if !prof.Prepares {
		s.log.Info("preparation skipped", "profile", string(prof.ID))
		return nil
	}

	s.settleDelay()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.runManage(ctx, "migrate", "migrate", "--noinput"); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.runManage(ctx, "collectstatic", "collectstatic", "--noinput"); err != nil {
		return err
	}

	if s.cfg.AdminBootstrap {
		s.seedAdmin(ctx)
	}

	return ctx.Err()
}

// Handoff replaces the launcher's process image with the server. It returns
// only on failure.
func (s *Sequencer) Handoff() error {
	prof, ok := config.ProfileByName(string(s.cfg.Profile))
	if !ok {
		return fmt.Errorf("unknown boot profile %q", s.cfg.Profile)
	}

	argv := prof.ServerArgv(s.cfg)
	path, err := s.lookPath(argv[0])
	if err != nil {
		return &StepError{Step: "handoff", ExitCode: 1, Err: fmt.Errorf("%s not found on PATH: %w", argv[0], err)}
	}

	env := append(s.environ(), fmt.Sprintf("PORT=%d", s.cfg.Port))

	s.log.Info("handing off to server", "cmd", strings.Join(argv, " "))
	if err := s.execve(path, argv, env); err != nil {
		return &StepError{Step: "handoff", ExitCode: 1, Err: err}
	}
	return nil
}

// settleDelay waits a fixed interval when a database is configured, giving a
// freshly scheduled database container a moment before migrations hit it.
// An empty DATABASE_URL adds zero latency.
func (s *Sequencer) settleDelay() {
	if s.cfg.DatabaseURL == "" {
		s.log.Debug("no database configured, skipping settle delay")
		return
	}
	s.log.Info("waiting for database to settle", "delay", databaseSettleDelay)
	s.sleep(databaseSettleDelay)
}

// runManage executes a manage.py subcommand as a fatal step.
func (s *Sequencer) runManage(ctx context.Context, step string, args ...string) error {
	argv := append([]string{s.cfg.PythonBin, "manage.py"}, args...)
	s.log.Info("running step", "step", step, "cmd", strings.Join(argv, " "))

	if err := s.runCommand(ctx, s.cfg.AppDir, argv); err != nil {
		code := exitCode(err)
		s.log.Error("step failed", "step", step, "exit_code", code, "error", err)
		return &StepError{Step: step, ExitCode: code, Err: err}
	}

	s.log.Info("step completed", "step", step)
	return nil
}

// seedAdmin creates the default admin account. Best effort: a failure is
// logged and swallowed, it never changes the boot outcome.
func (s *Sequencer) seedAdmin(ctx context.Context) {
	s.log.Info("running step", "step", "admin-seed")

	argv := []string{s.cfg.PythonBin, "manage.py", "shell", "-c", adminSeedScript}
	if err := s.runCommand(ctx, s.cfg.AppDir, argv); err != nil {
		s.log.Warn("admin seed failed, continuing", "error", err)
		return
	}
	s.log.Info("step completed", "step", "admin-seed")
}

// Plan returns human-readable descriptions of the steps Run would execute
// for cfg, without executing anything.
func Plan(cfg *config.Config) []string {
	prof, ok := config.ProfileByName(string(cfg.Profile))
	if !ok {
		return nil
	}

	var steps []string
	if prof.Prepares {
		if cfg.DatabaseURL != "" {
			steps = append(steps, fmt.Sprintf("wait %s for the database to settle", databaseSettleDelay))
		}
		steps = append(steps,
			"apply schema migrations (manage.py migrate --noinput)",
			"collect static assets (manage.py collectstatic --noinput)",
		)
		if cfg.AdminBootstrap {
			steps = append(steps, "seed default admin account (best effort)")
		}
	}
	steps = append(steps, "exec "+strings.Join(prof.ServerArgv(cfg), " "))
	return steps
}

// runCommand runs argv in dir with output passed straight through to the
// container's streams.
func runCommand(ctx context.Context, dir string, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
