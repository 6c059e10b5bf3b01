package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/aweris/nursery"
)

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a file or directory to the store",
	Long: "Add a package to the store. Directories are copied as they are. Files are\n" +
		"treated as downloaded assets: tar.gz, tar.xz and zip archives are unpacked and\n" +
		"anything else becomes a single executable. Use --copy to store a file verbatim.",
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().String("sha256", "", "expected content hash of the file")
	addCmd.Flags().Bool("copy", false, "store a file verbatim under its own name instead of unpacking it")
	addCmd.Flags().Bool("activate", false, "activate the package binaries after adding")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	source := args[0]
	expected, _ := cmd.Flags().GetString("sha256")
	verbatim, _ := cmd.Flags().GetBool("copy")
	activate, _ := cmd.Flags().GetBool("activate")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}

	info, err := os.Stat(source)
	if err != nil {
		return err
	}

	var pkg nursery.StoredPackage
	if info.IsDir() || verbatim {
		if expected != "" {
			return errors.New("--sha256 only applies to files added as assets")
		}
		pkg, err = s.AddPath(source)
	} else {
		var data []byte
		data, err = os.ReadFile(source)
		if err != nil {
			return err
		}
		pkg, err = s.AddBytes(data, expected)
	}
	if err != nil {
		return err
	}

	printPackage(cmd, pkg)

	if activate {
		return activatePackage(cmd, s, pkg)
	}
	return nil
}
