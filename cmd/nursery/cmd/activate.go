package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aweris/nursery"
)

var activateCmd = &cobra.Command{
	Use:   "activate <hash>",
	Short: "Link a package's binaries into the bin directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivate,
}

var deactivateCmd = &cobra.Command{
	Use:   "deactivate <hash>",
	Short: "Remove a package's binaries from the bin directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeactivate,
}

func init() {
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(deactivateCmd)
}

func runActivate(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}

	pkg, err := s.Lookup(args[0])
	if err != nil {
		return err
	}
	return activatePackage(cmd, s, pkg)
}

func activatePackage(cmd *cobra.Command, s *nursery.Store, pkg nursery.StoredPackage) error {
	report, err := s.ActivateReport(pkg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, link := range report.Linked {
		fmt.Fprintf(out, "linked %s\n", link)
	}
	for _, name := range report.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: not found in package\n", name)
	}

	if len(report.Linked) > 0 && !onPath(s.BinDir()) {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: add %s to PATH to use activated binaries\n", s.BinDir())
	}
	return nil
}

func runDeactivate(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}

	pkg, err := s.Lookup(args[0])
	if err != nil {
		return err
	}
	return s.Deactivate(pkg)
}

func onPath(dir string) bool {
	return slices.Contains(filepath.SplitList(os.Getenv("PATH")), dir)
}
