package cmd

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aweris/nursery"
	"github.com/aweris/nursery/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "nursery",
	Short: "Content-addressed package store",
	Long: "Store third-party binary packages by content hash, expose their binaries\n" +
		"through a shared bin directory and garbage collect what is no longer used.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ~/.config/nursery/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "store root holding store/ and bin/ (default: ~/.local/share/nursery)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
	rootCmd.PersistentFlags().Int("concurrency", 0, "packages inspected in parallel when listing (default: GOMAXPROCS)")
	rootCmd.PersistentFlags().Int("cache-size", nursery.DefaultCacheSize, "packages whose binaries are cached in memory")

	viper.BindPFlag("root", rootCmd.PersistentFlags().Lookup("root"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
	viper.BindPFlag("cache_size", rootCmd.PersistentFlags().Lookup("cache-size"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("NURSERY")
	viper.AutomaticEnv()
	viper.SetDefault("root", nursery.DefaultRoot())

	viper.ReadInConfig()
}

func configDir() string {
	return filepath.Join(xdg.ConfigHome, nursery.DirName)
}

// openStore builds the store from the resolved configuration.
func openStore(cmd *cobra.Command) (*nursery.Store, error) {
	logging.Setup(viper.GetInt("verbose"), cmd.ErrOrStderr())

	root := viper.GetString("root")
	if root == "" {
		root = nursery.DefaultRoot()
	}
	return nursery.New(
		nursery.WithRoot(root),
		nursery.WithLogger(logging.Component("store")),
		nursery.WithConcurrency(viper.GetInt("concurrency")),
		nursery.WithCacheSize(viper.GetInt("cache_size")),
	)
}
