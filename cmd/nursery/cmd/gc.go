package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aweris/nursery"
	"github.com/aweris/nursery/internal/lockfile"
)

var gcCmd = &cobra.Command{
	Use:   "gc [hash...]",
	Short: "Remove packages that are no longer referenced",
	Long: "Remove every stored package whose hash is neither given as an argument nor\n" +
		"recorded in one of the --lockfile files. Removed packages are deactivated first.",
	RunE: runGC,
}

func init() {
	gcCmd.Flags().StringSlice("lockfile", nil, "lockfile whose hashes are kept (repeatable)")
	gcCmd.Flags().Bool("dry-run", false, "print what would be removed without removing it")
	gcCmd.Flags().Bool("all", false, "allow an empty keep-set, removing every package")
	rootCmd.AddCommand(gcCmd)
}

func runGC(cmd *cobra.Command, args []string) error {
	lockfiles, _ := cmd.Flags().GetStringSlice("lockfile")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	all, _ := cmd.Flags().GetBool("all")

	keep := nursery.KeepSet(args...)
	for _, path := range lockfiles {
		lf, err := lockfile.Load(path)
		if err != nil {
			return err
		}
		for _, h := range lf.Hashes() {
			keep[h] = struct{}{}
		}
	}
	if len(keep) == 0 && !all {
		return errors.New("empty keep-set would remove every package; pass hashes, --lockfile or --all")
	}

	s, err := openStore(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dryRun {
		pkgs, err := s.List()
		if err != nil {
			return err
		}
		for _, pkg := range pkgs {
			if _, ok := keep[pkg.Hash]; !ok {
				fmt.Fprintf(out, "would remove %s\n", pkg.Hash)
			}
		}
		return nil
	}

	removed, err := s.GC(keep)
	for _, h := range removed {
		fmt.Fprintf(out, "removed %s\n", h)
	}
	return err
}
