package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/resultwatch/internal/config"
	"github.com/Lllllllleong/resultwatch/internal/services"
)

var mergeOutput string

func init() {
	mergeCmd.Flags().StringVar(&mergeOutput, "output", config.DefaultMergedName, "Name of the merged file, written inside the directory.")
	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge [dir] [--output <name.pdf>]",
	Short: "Merges every PDF in a directory into one file, in filename order.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := config.DefaultDownloadDir
		if len(args) == 1 {
			dir = args[0]
		}

		res, err := services.NewMerger(mergeOutput).Merge(dir)
		if err != nil {
			return err
		}
		if res.Output == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "No PDFs found in %s.\n", dir)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Merged %d files into %s.\n", len(res.Files), res.Output)
		return nil
	},
}
