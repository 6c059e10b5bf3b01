package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aweris/nursery"
)

var getCmd = &cobra.Command{
	Use:   "get <hash>",
	Short: "Show a stored package",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}

	pkg, err := s.Lookup(args[0])
	if err != nil {
		return err
	}
	printPackage(cmd, pkg)
	return nil
}

func printPackage(cmd *cobra.Command, pkg nursery.StoredPackage) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "hash:     %s\n", pkg.Hash)
	fmt.Fprintf(out, "path:     %s\n", pkg.Path)
	fmt.Fprintf(out, "binaries: %s\n", formatBinaries(pkg.Binaries))
}

func formatBinaries(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
