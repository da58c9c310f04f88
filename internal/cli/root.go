package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/winningticket/launcher/internal/config"
	"github.com/winningticket/launcher/internal/logging"
	"github.com/winningticket/launcher/internal/sequencer"
	"github.com/winningticket/launcher/internal/server"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor propagates the exit code of the first failing boot step.
func exitCodeFor(err error) int {
	var stepErr *sequencer.StepError
	if errors.As(err, &stepErr) && stepErr.ExitCode > 0 {
		return stepErr.ExitCode
	}
	return 1
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "launcher",
		Short: "Boot sequencer for the Winning Ticket web application",
		Long: `launcher prepares a Winning Ticket container and hands the process over
to gunicorn: it resolves the listen port, optionally waits for the database,
applies migrations, collects static assets, seeds the default admin account,
then replaces its own process image with the server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBoot(cmd.Context(), configPath)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a launcher config file")

	cmd.AddCommand(newPlanCmd(&configPath))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func runBoot(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logging.NewBootLogger(cfg.Debug)
	log.Info("configuration resolved", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var hold *server.Holding
	if cfg.HoldingPage {
		hold = server.NewHolding(cfg.Port, log)
		if err := hold.Start(); err != nil {
			// Preparation can proceed without the page.
			log.Warn("continuing without holding page", "error", err)
			hold = nil
		}
	}

	seq := sequencer.New(cfg, log)

	if err := seq.Prepare(ctx); err != nil {
		if hold != nil {
			hold.Release(context.Background())
		}
		return err
	}

	if hold != nil {
		if err := hold.Release(context.Background()); err != nil {
			return fmt.Errorf("failed to free port %d for the server: %w", cfg.Port, err)
		}
	}

	// Restore default signal disposition so the server inherits a clean slate.
	stop()

	return seq.Handoff()
}
