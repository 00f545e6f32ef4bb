package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/resultwatch/internal/services"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [--config <path/to/watch.yaml>]",
	Short: "Checks once whether the result is out and, if so, downloads, merges and sends it.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		checker, closeClients, err := services.NewResultChecker(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeClients()

		res, err := checker.Check(cmd.Context())
		if err != nil {
			return err
		}
		slog.Info("Check finished.", "runId", res.RunID, "outcome", res.Outcome.String(),
			"elapsed", res.FinishedAt.Sub(res.StartedAt).String())
		return nil
	},
}
