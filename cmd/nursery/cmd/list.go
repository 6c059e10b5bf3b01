package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored packages",
	Long:  "List every package in the store with the binaries it provides.",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}

	pkgs, err := s.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, pkg := range pkgs {
		fmt.Fprintf(out, "%s\t%s\n", pkg.Hash, formatBinaries(pkg.Binaries))
	}
	if len(pkgs) == 0 {
		fmt.Fprintln(out, "(no packages)")
	}
	return nil
}
