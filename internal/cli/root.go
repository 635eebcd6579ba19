package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	dataDir string
	driver  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "memodesk",
	Short: "Local memo store",
	Long: `memodesk - a small, durable notebook.

Memos live in a single SQLite file under your user config directory and
are reachable from the command line, an HTTP API and an MCP tool server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./memodesk.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the memo database (default is the user config dir)")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "storage driver: sqlite3, sqlite or memory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("storage.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("storage.driver", rootCmd.PersistentFlags().Lookup("driver"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(memoCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpServerCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("memodesk")
		viper.SetConfigType("yaml")
	}

	// A .env in the working directory may carry MEMODESK_* settings; real
	// environment variables win.
	_ = godotenv.Load()

	// MEMODESK_STORAGE_DATA_DIR overrides storage.data_dir, and so on.
	viper.SetEnvPrefix("MEMODESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if verboseRequested() {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
