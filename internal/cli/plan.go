package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/winningticket/launcher/internal/config"
	"github.com/winningticket/launcher/internal/sequencer"
)

// newPlanCmd prints the resolved configuration and the steps the boot would
// run, without executing anything. Debug aid for image builds.
func newPlanCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the resolved configuration and boot steps without running them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Configuration:")
			redacted := cfg.Redacted()
			keys := make([]string, 0, len(redacted))
			for k := range redacted {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %-16s %v\n", k, redacted[k])
			}

			fmt.Fprintln(out, "Steps:")
			for i, step := range sequencer.Plan(cfg) {
				fmt.Fprintf(out, "  %d. %s\n", i+1, step)
			}
			return nil
		},
	}
}
