package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sequenceCmd)
}

var sequenceCmd = &cobra.Command{
	Use:   "sequence",
	Short: "Prints the roll numbers in the order a check would submit them.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		for _, n := range cfg.Rolls.Sequence() {
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Rolls.Label(n))
		}
		return nil
	},
}
