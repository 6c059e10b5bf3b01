package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aweris/nursery"
)

var hashCmd = &cobra.Command{
	Use:   "hash <path>",
	Short: "Print the content hash of a file or directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	h, err := nursery.HashPath(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), h)
	return nil
}
