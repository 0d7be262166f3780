package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aniwatch",
	Short: "An anime catalog browser and watchlist tracker",
	Long: `Aniwatch serves a catalog-browsing and personal-tracking web API
backed by the MyAnimeList API through a read-through TTL cache, with user
accounts, watchlists, and reviews stored locally in SQLite.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.aniwatch.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().String("listen-addr", "", "address for the http server to listen on")
	rootCmd.PersistentFlags().String("database-dir", "", "directory where the SQLite database is stored")

	// Bind flags to viper
	viper.BindPFlag("listen_addr", rootCmd.PersistentFlags().Lookup("listen-addr"))
	viper.BindPFlag("database_dir", rootCmd.PersistentFlags().Lookup("database-dir"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in home directory and current directory
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".aniwatch")
		viper.SetConfigName("config")
	}

	// Environment variables
	viper.SetEnvPrefix("ANIWATCH")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
